package banks

import "testing"

func TestNewAbsentBanks(t *testing.T) {
	b := New(0, 0, 10, 0)
	if b.Coils != nil || b.DiscreteInputs != nil || b.InputRegisters != nil {
		t.Fatalf("expected unrequested banks to be nil")
	}
	if b.HoldingRegisters == nil || len(b.HoldingRegisters) != 10 {
		t.Fatalf("expected holding registers of size 10, got %v", b.HoldingRegisters)
	}
	if b.HasCoils() || b.HasDiscreteInputs() || b.HasInputRegisters() {
		t.Fatalf("presence checks should report false for absent banks")
	}
	if !b.HasHoldingRegisters() {
		t.Fatalf("expected holding registers to be present")
	}
}

func TestCoilsSizeInRegisterUnits(t *testing.T) {
	b := New(17, 0, 0, 0)
	if got := b.CoilsSize(); got != 2 {
		t.Fatalf("CoilsSize() = %d, want 2", got)
	}
}

func TestReadWriteCoilBit(t *testing.T) {
	b := New(16, 0, 0, 0)
	if err := b.WriteCoilBit(3, 0xFF00); err != nil {
		t.Fatalf("WriteCoilBit: %v", err)
	}
	out, err := b.ReadCoilBits(0, 8)
	if err != nil {
		t.Fatalf("ReadCoilBits: %v", err)
	}
	if out[0] != 0x08 {
		t.Fatalf("ReadCoilBits = %08b, want bit 3 set", out[0])
	}
	if err := b.WriteCoilBit(3, 0x0000); err != nil {
		t.Fatalf("WriteCoilBit off: %v", err)
	}
	out, _ = b.ReadCoilBits(0, 8)
	if out[0] != 0 {
		t.Fatalf("ReadCoilBits = %08b, want all clear", out[0])
	}
}

// Any value whose high byte isn't 0xFF clears the coil; the original
// never rejects a value outright, it only ever inspects the high byte.
func TestWriteCoilBitNonFFHighByteClears(t *testing.T) {
	b := New(8, 0, 0, 0)
	if err := b.WriteCoilBit(0, 0xFF00); err != nil {
		t.Fatalf("WriteCoilBit on: %v", err)
	}
	if err := b.WriteCoilBit(0, 0x1234); err != nil {
		t.Fatalf("WriteCoilBit: %v", err)
	}
	out, err := b.ReadCoilBits(0, 1)
	if err != nil {
		t.Fatalf("ReadCoilBits: %v", err)
	}
	if out[0] != 0 {
		t.Fatalf("ReadCoilBits = %08b, want coil cleared by a non-0xFF00 high byte", out[0])
	}
}

func TestReadCoilBitsOutOfRange(t *testing.T) {
	b := New(8, 0, 0, 0)
	if _, err := b.ReadCoilBits(5, 10); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestReadWriteHoldingWords(t *testing.T) {
	b := New(0, 0, 4, 0)
	if err := b.WriteHoldingWord(2, 0xBEEF); err != nil {
		t.Fatalf("WriteHoldingWord: %v", err)
	}
	out, err := b.ReadHoldingWords(2, 1)
	if err != nil {
		t.Fatalf("ReadHoldingWords: %v", err)
	}
	if len(out) != 2 || out[0] != 0xBE || out[1] != 0xEF {
		t.Fatalf("ReadHoldingWords = % x, want be ef", out)
	}
}

func TestWriteHoldingWords(t *testing.T) {
	b := New(0, 0, 4, 0)
	if err := b.WriteHoldingWords(0, 2, []byte{0x00, 0x01, 0x00, 0x02}); err != nil {
		t.Fatalf("WriteHoldingWords: %v", err)
	}
	if b.HoldingRegisters[0] != 1 || b.HoldingRegisters[1] != 2 {
		t.Fatalf("unexpected register contents: %v", b.HoldingRegisters)
	}
}

func TestReadInputWordsOutOfRange(t *testing.T) {
	b := New(0, 0, 0, 4)
	if _, err := b.ReadInputWords(3, 5); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}
