package rtu

import (
	"testing"

	"github.com/ffutop/modbus-engine/internal/banks"
)

// Scenario 1 from spec: bank [0x000A, 0x0102, 0xFFFF], request
// 11 03 00 00 00 03 <crc> -> response 11 03 06 00 0A 01 02 FF FF <crc>.
func TestHandleReadHoldingRegistersScenario(t *testing.T) {
	b := banks.New(0, 0, 3, 0)
	b.WriteHoldingWord(0, 0x000A)
	b.WriteHoldingWord(1, 0x0102)
	b.WriteHoldingWord(2, 0xFFFF)

	frame := frameWithCRC(0x11, FuncReadHoldingRegisters, 0x00, 0x00, 0x00, 0x03)
	resp, err := Dispatch(frame, b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := []byte{0x11, 0x03, 0x06, 0x00, 0x0A, 0x01, 0x02, 0xFF, 0xFF}
	if string(resp) != string(want) {
		t.Fatalf("response = % x, want % x", resp, want)
	}
}

// Scenario 2: write single coil on, request 11 05 00 01 FF 00 <crc> ->
// response is byte-identical to the request body, coil bit 1 becomes 1.
func TestHandleWriteSingleCoilOnScenario(t *testing.T) {
	b := banks.New(16, 0, 0, 0)
	frame := frameWithCRC(0x11, FuncWriteSingleCoil, 0x00, 0x01, 0xFF, 0x00)
	resp, err := Dispatch(frame, b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := []byte{0x11, 0x05, 0x00, 0x01, 0xFF, 0x00}
	if string(resp) != string(want) {
		t.Fatalf("response = % x, want % x", resp, want)
	}
	bits, err := b.ReadCoilBits(0, 2)
	if err != nil {
		t.Fatalf("ReadCoilBits: %v", err)
	}
	if bits[0] != 0x02 {
		t.Fatalf("coils[0] bit layout = %08b, want bit 1 set", bits[0])
	}
}

func TestHandleWriteMultipleRegisters(t *testing.T) {
	b := banks.New(0, 0, 4, 0)
	frame := frameWithCRC(0x11, FuncWriteMultipleRegisters, 0x00, 0x00, 0x00, 0x02, 0x04, 0x00, 0x0A, 0x00, 0x0B)
	resp, err := Dispatch(frame, b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := []byte{0x11, 0x10, 0x00, 0x00, 0x00, 0x02}
	if string(resp) != string(want) {
		t.Fatalf("response = % x, want % x", resp, want)
	}
	if b.HoldingRegisters[0] != 0x0A || b.HoldingRegisters[1] != 0x0B {
		t.Fatalf("unexpected registers: %v", b.HoldingRegisters)
	}
}

// FC6 followed by FC3 of the same address must return the written value.
func TestWriteSingleRegisterThenReadIsIdempotent(t *testing.T) {
	b := banks.New(0, 0, 4, 0)
	writeFrame := frameWithCRC(0x11, FuncWriteSingleRegister, 0x00, 0x02, 0xBE, 0xEF)
	if _, err := Dispatch(writeFrame, b); err != nil {
		t.Fatalf("Dispatch write: %v", err)
	}
	readFrame := frameWithCRC(0x11, FuncReadHoldingRegisters, 0x00, 0x02, 0x00, 0x01)
	resp, err := Dispatch(readFrame, b)
	if err != nil {
		t.Fatalf("Dispatch read: %v", err)
	}
	want := []byte{0x11, 0x03, 0x02, 0xBE, 0xEF}
	if string(resp) != string(want) {
		t.Fatalf("response = % x, want % x", resp, want)
	}
}

func TestReadDiscreteInputsDistinctFromCoils(t *testing.T) {
	b := banks.New(8, 8, 0, 0)
	b.DiscreteInputs[0] = 1
	frame := frameWithCRC(0x11, FuncReadDiscreteInputs, 0x00, 0x00, 0x00, 0x08)
	resp, err := Dispatch(frame, b)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp[3] != 0x01 {
		t.Fatalf("discrete input byte = %08b, want bit 0 set", resp[3])
	}
	coilFrame := frameWithCRC(0x11, FuncReadCoils, 0x00, 0x00, 0x00, 0x08)
	coilResp, err := Dispatch(coilFrame, b)
	if err != nil {
		t.Fatalf("Dispatch coils: %v", err)
	}
	if coilResp[3] != 0x00 {
		t.Fatalf("coils should be untouched by a discrete-input write: got %08b", coilResp[3])
	}
}
