// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"github.com/ffutop/modbus-engine/internal/banks"
)

// ValidateRequest checks a slave-bound frame in the order the
// original validateRequest did: CRC, then function-code membership,
// then an address-range check keyed by function code. Bank presence
// is checked before any arithmetic against bank size, per the design
// note that an absent bank must short-circuit rather than divide by a
// size of zero.
func ValidateRequest(frame []byte, b *banks.RegisterBanks) ErrCode {
	if len(frame) < MinRequestSize {
		return ErrBadSize
	}
	if !VerifyCRC(frame) {
		return ErrBadCRC
	}
	fc := frame[1]
	if !IsSupportedFunction(fc) {
		return ErrIllegalFunction
	}

	switch fc {
	case FuncReadCoils, FuncReadDiscreteInputs:
		start := GetUint16BE(frame[2:4])
		qty := GetUint16BE(frame[4:6])
		coilsSize := b.CoilsSize()
		if coilsSize == 0 {
			return ErrIllegalDataAddress
		}
		if int(start)/16+ceilDiv(int(qty), 16) > coilsSize {
			return ErrIllegalDataAddress
		}
		if ceilDiv(int(qty), 8)+5 > MaxFrameSize {
			return ErrIllegalDataValue
		}
	case FuncWriteMultipleCoils:
		start := GetUint16BE(frame[2:4])
		qty := GetUint16BE(frame[4:6])
		coilsSize := b.CoilsSize()
		if coilsSize == 0 {
			return ErrIllegalDataAddress
		}
		if int(start)/16+ceilDiv(int(qty), 16) > coilsSize {
			return ErrIllegalDataAddress
		}
		if ceilDiv(int(qty), 8)+5 > MaxFrameSize {
			return ErrIllegalDataValue
		}
		// The declared byte count must actually fit inside the frame
		// the handler will slice: a crafted request with a small qty
		// but a mismatched byteCount would otherwise pass the checks
		// above and panic in Dispatch.
		byteCount := int(frame[6])
		if 7+byteCount+2 > len(frame) {
			return ErrIllegalDataValue
		}
	case FuncWriteSingleCoil:
		start := GetUint16BE(frame[2:4])
		coilsSize := b.CoilsSize()
		if coilsSize == 0 {
			return ErrIllegalDataAddress
		}
		// Checks the containing 16-coil register, not the bit-exact
		// coil count, matching Modbus.c's process_FC5 range check
		// (u16AdRegs = start/16, rounded up). A coil at the top of the
		// last register passes even when it is one past coils_size*16
		// bits; kept as-is rather than tightened to bit granularity.
		if ceilDiv(int(start), 16) > coilsSize {
			return ErrIllegalDataAddress
		}
	case FuncWriteSingleRegister:
		start := GetUint16BE(frame[2:4])
		if int(start) >= b.HoldingRegistersSize() {
			return ErrIllegalDataAddress
		}
	case FuncReadHoldingRegisters:
		start := GetUint16BE(frame[2:4])
		qty := GetUint16BE(frame[4:6])
		if int(start)+int(qty) > b.HoldingRegistersSize() {
			return ErrIllegalDataAddress
		}
		if int(qty)*2+5 > MaxFrameSize {
			return ErrIllegalDataValue
		}
	case FuncWriteMultipleRegisters:
		start := GetUint16BE(frame[2:4])
		qty := GetUint16BE(frame[4:6])
		if int(start)+int(qty) > b.HoldingRegistersSize() {
			return ErrIllegalDataAddress
		}
		if int(qty)*2+5 > MaxFrameSize {
			return ErrIllegalDataValue
		}
		byteCount := int(frame[6])
		if 7+byteCount+2 > len(frame) {
			return ErrIllegalDataValue
		}
	case FuncReadInputRegisters:
		start := GetUint16BE(frame[2:4])
		qty := GetUint16BE(frame[4:6])
		if int(start)+int(qty) > b.InputRegistersSize() {
			return ErrIllegalDataAddress
		}
		if int(qty)*2+5 > MaxFrameSize {
			return ErrIllegalDataValue
		}
	}
	return ErrNone
}

// ValidateAnswer checks a master-bound response: CRC, then whether
// the exception bit is set, then function-code membership.
func ValidateAnswer(frame []byte) ErrCode {
	if len(frame) < MinWireSize {
		return ErrBadSize
	}
	if !VerifyCRC(frame) {
		return ErrBadCRC
	}
	fc := frame[1]
	if fc&ExceptionFlag != 0 {
		return ErrException
	}
	if !IsSupportedFunction(fc) {
		return ErrIllegalFunction
	}
	return ErrNone
}
