// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import "github.com/ffutop/modbus-engine/internal/rtu"

// Telegram is the host-facing description of one master request. The
// original's "opaque originator handle" becomes, in Go, nothing more
// than the caller's own goroutine blocking on the channel Query
// returns internally — there is no stored handle to manage.
type Telegram struct {
	StationID byte
	FuncCode  byte
	Address   uint16

	// Quantity is the coil/register count for a read or a
	// write-multiple request.
	Quantity uint16

	// Value carries the write value for FuncWriteSingleCoil /
	// FuncWriteSingleRegister.
	Value uint16

	// Data carries the write payload for FuncWriteMultipleCoils /
	// FuncWriteMultipleRegisters (packed bits / big-endian words,
	// exactly the wire format), and receives the response payload
	// for a successful read — in the same wire format the banks
	// package itself produces from ReadCoilBits/ReadHoldingWords, so
	// a host mirroring a remote slave's state can feed it straight
	// back into its own RegisterBanks.
	Data []byte
}

// NotifyResult is the value delivered to a query's originator,
// carrying the notification value the original posts via
// xTaskNotify: ErrOKQuery on success, or the failing ErrCode.
type NotifyResult struct {
	Code rtu.ErrCode
}

type queuedTelegram struct {
	telegram Telegram
	result   chan NotifyResult
}

func buildRequestFrame(t Telegram) []byte {
	switch t.FuncCode {
	case rtu.FuncReadCoils, rtu.FuncReadDiscreteInputs,
		rtu.FuncReadHoldingRegisters, rtu.FuncReadInputRegisters:
		f := make([]byte, 0, 6)
		f = append(f, t.StationID, t.FuncCode)
		f = append(f, rtu.PutUint16BE(t.Address)...)
		f = append(f, rtu.PutUint16BE(t.Quantity)...)
		return f
	case rtu.FuncWriteSingleCoil, rtu.FuncWriteSingleRegister:
		f := make([]byte, 0, 6)
		f = append(f, t.StationID, t.FuncCode)
		f = append(f, rtu.PutUint16BE(t.Address)...)
		f = append(f, rtu.PutUint16BE(t.Value)...)
		return f
	case rtu.FuncWriteMultipleCoils, rtu.FuncWriteMultipleRegisters:
		f := make([]byte, 0, 7+len(t.Data))
		f = append(f, t.StationID, t.FuncCode)
		f = append(f, rtu.PutUint16BE(t.Address)...)
		f = append(f, rtu.PutUint16BE(t.Quantity)...)
		f = append(f, byte(len(t.Data)))
		f = append(f, t.Data...)
		return f
	default:
		return nil
	}
}

// applyAnswer copies a validated response's payload into t.Data. Write
// responses carry nothing to copy.
func applyAnswer(raw []byte, t Telegram) {
	switch t.FuncCode {
	case rtu.FuncReadCoils, rtu.FuncReadDiscreteInputs,
		rtu.FuncReadHoldingRegisters, rtu.FuncReadInputRegisters:
		byteCount := int(raw[2])
		if byteCount > len(raw)-5 {
			byteCount = len(raw) - 5
		}
		copy(t.Data, raw[3:3+byteCount])
	}
}
