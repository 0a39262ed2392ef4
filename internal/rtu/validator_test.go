package rtu

import (
	"testing"

	"github.com/ffutop/modbus-engine/internal/banks"
)

func frameWithCRC(body ...byte) []byte {
	return AppendCRC(append([]byte{}, body...))
}

func TestValidateRequestReadHolding(t *testing.T) {
	b := banks.New(0, 0, 8, 0)
	frame := frameWithCRC(0x11, FuncReadHoldingRegisters, 0x00, 0x00, 0x00, 0x03)
	if got := ValidateRequest(frame, b); got != ErrNone {
		t.Fatalf("ValidateRequest = %v, want ErrNone", got)
	}
}

func TestValidateRequestBadCRC(t *testing.T) {
	b := banks.New(0, 0, 8, 0)
	frame := frameWithCRC(0x11, FuncReadHoldingRegisters, 0x00, 0x00, 0x00, 0x03)
	frame[len(frame)-1] ^= 0xFF
	if got := ValidateRequest(frame, b); got != ErrBadCRC {
		t.Fatalf("ValidateRequest = %v, want ErrBadCRC", got)
	}
}

func TestValidateRequestIllegalFunction(t *testing.T) {
	b := banks.New(0, 0, 8, 0)
	frame := frameWithCRC(0x11, 0x07, 0x00, 0x00, 0x00, 0x00)
	if got := ValidateRequest(frame, b); got != ErrIllegalFunction {
		t.Fatalf("ValidateRequest = %v, want ErrIllegalFunction", got)
	}
}

func TestValidateRequestAddressOnePastBankSize(t *testing.T) {
	b := banks.New(0, 0, 8, 0)
	// start=8, qty=1 -> 8+1=9 > 8 holding registers
	frame := frameWithCRC(0x11, FuncReadHoldingRegisters, 0x00, 0x08, 0x00, 0x01)
	if got := ValidateRequest(frame, b); got != ErrIllegalDataAddress {
		t.Fatalf("ValidateRequest = %v, want ErrIllegalDataAddress", got)
	}
}

func TestValidateRequestAbsentBank(t *testing.T) {
	b := banks.New(0, 0, 8, 0)
	frame := frameWithCRC(0x11, FuncReadCoils, 0x00, 0x00, 0x00, 0x01)
	if got := ValidateRequest(frame, b); got != ErrIllegalDataAddress {
		t.Fatalf("ValidateRequest on absent coil bank = %v, want ErrIllegalDataAddress", got)
	}
}

func TestValidateRequestWriteSingleCoilAddressRange(t *testing.T) {
	b := banks.New(16, 0, 0, 0)
	frame := frameWithCRC(0x11, FuncWriteSingleCoil, 0x00, 0x0F, 0xFF, 0x00)
	if got := ValidateRequest(frame, b); got != ErrNone {
		t.Fatalf("ValidateRequest = %v, want ErrNone for last valid coil", got)
	}
	// start=16 gives ceil(16/16) = 1 register, not more than the one
	// register of the bank, under the containing-register check this
	// preserves from Modbus.c's process_FC5 (ceil(start/16) >
	// coils_size), so it is accepted even though coil 16 itself is out
	// of range.
	frame2 := frameWithCRC(0x11, FuncWriteSingleCoil, 0x00, 0x10, 0xFF, 0x00)
	if got := ValidateRequest(frame2, b); got != ErrNone {
		t.Fatalf("ValidateRequest = %v, want ErrNone (containing-register check accepts start=16)", got)
	}
	frame3 := frameWithCRC(0x11, FuncWriteSingleCoil, 0x00, 0x20, 0xFF, 0x00)
	if got := ValidateRequest(frame3, b); got != ErrIllegalDataAddress {
		t.Fatalf("ValidateRequest = %v, want ErrIllegalDataAddress one register past bank", got)
	}
}

// A byteCount field claiming more payload than the frame actually
// carries must be rejected here, before Dispatch ever slices on it.
func TestValidateRequestWriteMultipleByteCountExceedsFrame(t *testing.T) {
	b := banks.New(0, 0, 4, 0)
	frame := frameWithCRC(0x11, FuncWriteMultipleRegisters, 0x00, 0x00, 0x00, 0x02, 0xFA, 0x00, 0x0A, 0x00, 0x0B)
	if got := ValidateRequest(frame, b); got != ErrIllegalDataValue {
		t.Fatalf("ValidateRequest = %v, want ErrIllegalDataValue", got)
	}

	bc := banks.New(32, 0, 0, 0)
	coilFrame := frameWithCRC(0x11, FuncWriteMultipleCoils, 0x00, 0x00, 0x00, 0x08, 0xFA, 0x00)
	if got := ValidateRequest(coilFrame, bc); got != ErrIllegalDataValue {
		t.Fatalf("ValidateRequest = %v, want ErrIllegalDataValue", got)
	}
}

func TestValidateAnswerException(t *testing.T) {
	frame := frameWithCRC(0x11, FuncReadHoldingRegisters|ExceptionFlag, 0x01)
	if got := ValidateAnswer(frame); got != ErrException {
		t.Fatalf("ValidateAnswer = %v, want ErrException", got)
	}
}

func TestValidateAnswerOK(t *testing.T) {
	frame := frameWithCRC(0x11, FuncReadHoldingRegisters, 0x02, 0x00, 0x2A)
	if got := ValidateAnswer(frame); got != ErrNone {
		t.Fatalf("ValidateAnswer = %v, want ErrNone", got)
	}
}
