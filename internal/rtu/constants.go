// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package rtu implements the wire-level building blocks of Modbus
// RTU: the receive ring buffer, the CRC-16/MODBUS frame codec, the
// request/answer validators and the eight function-code handlers.
// Nothing in this package knows about goroutines, timers or UARTs —
// that belongs to internal/engine, which drives this package.
package rtu

const (
	// MinBufferCapacity is the minimum ring-buffer and scratch-frame
	// capacity a conforming instance must provide.
	MinBufferCapacity = 256

	// MaxFrameSize is the largest frame, CRC included, this package
	// will ever build or accept.
	MaxFrameSize = 256

	// MinRequestSize is the shortest frame a slave will even attempt
	// to validate; anything shorter is ErrBadSize.
	MinRequestSize = 7

	// MinResponseSize is the shortest frame a master will attempt to
	// parse as an answer.
	MinResponseSize = 6

	// MinWireSize is the minimum physically meaningful RTU frame:
	// ID + FUNC + CRC_LO + CRC_HI.
	MinWireSize = 4

	// StationBroadcast is the slave id reserved for broadcast
	// requests. This engine does not implement broadcast semantics;
	// see the validator and slave loop for how it falls through to
	// ordinary address matching.
	StationBroadcast = 0

	// MaxStationID is the highest valid slave address.
	MaxStationID = 247
)

// Function codes supported by this engine. Diagnostics and the other
// function codes Modbus defines are out of scope.
const (
	FuncReadCoils              byte = 0x01
	FuncReadDiscreteInputs     byte = 0x02
	FuncReadHoldingRegisters   byte = 0x03
	FuncReadInputRegisters     byte = 0x04
	FuncWriteSingleCoil        byte = 0x05
	FuncWriteSingleRegister    byte = 0x06
	FuncWriteMultipleCoils     byte = 0x0F
	FuncWriteMultipleRegisters byte = 0x10
)

// ExceptionFlag is OR'd into the function code of an exception
// response.
const ExceptionFlag byte = 0x80

var supportedFunctions = [...]byte{
	FuncReadCoils,
	FuncReadDiscreteInputs,
	FuncReadHoldingRegisters,
	FuncReadInputRegisters,
	FuncWriteSingleCoil,
	FuncWriteSingleRegister,
	FuncWriteMultipleCoils,
	FuncWriteMultipleRegisters,
}

// IsSupportedFunction reports whether fc is one of the eight function
// codes this engine implements.
func IsSupportedFunction(fc byte) bool {
	for _, s := range supportedFunctions {
		if s == fc {
			return true
		}
	}
	return false
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
