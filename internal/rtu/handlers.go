// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"fmt"

	"github.com/ffutop/modbus-engine/internal/banks"
)

// Dispatch runs the handler for frame's function code against b and
// returns the response PDU (ID, FUNC, ... — no CRC yet). The caller
// must have already run ValidateRequest; Dispatch assumes the address
// range is sound and only returns an error for genuinely unexpected
// bank failures.
//
// Each handler takes the bank reference it needs directly instead of
// a boolean selector — the original's process_FC1 took a `Database`
// flag and only special-cased `Database == 1`, silently falling
// through to nothing for discrete inputs. Giving FC1 and FC2 their own
// handlers removes that class of bug rather than papering over it.
func Dispatch(frame []byte, b *banks.RegisterBanks) ([]byte, error) {
	switch frame[1] {
	case FuncReadCoils:
		return handleReadCoils(frame, b)
	case FuncReadDiscreteInputs:
		return handleReadDiscreteInputs(frame, b)
	case FuncReadHoldingRegisters:
		return handleReadHoldingRegisters(frame, b)
	case FuncReadInputRegisters:
		return handleReadInputRegisters(frame, b)
	case FuncWriteSingleCoil:
		return handleWriteSingleCoil(frame, b)
	case FuncWriteSingleRegister:
		return handleWriteSingleRegister(frame, b)
	case FuncWriteMultipleCoils:
		return handleWriteMultipleCoils(frame, b)
	case FuncWriteMultipleRegisters:
		return handleWriteMultipleRegisters(frame, b)
	default:
		return nil, fmt.Errorf("rtu: no handler for function code %#x", frame[1])
	}
}

func handleReadCoils(frame []byte, b *banks.RegisterBanks) ([]byte, error) {
	start := GetUint16BE(frame[2:4])
	qty := GetUint16BE(frame[4:6])
	bits, err := b.ReadCoilBits(start, qty)
	if err != nil {
		return nil, err
	}
	return readResponse(frame, bits), nil
}

func handleReadDiscreteInputs(frame []byte, b *banks.RegisterBanks) ([]byte, error) {
	start := GetUint16BE(frame[2:4])
	qty := GetUint16BE(frame[4:6])
	bits, err := b.ReadDiscreteBits(start, qty)
	if err != nil {
		return nil, err
	}
	return readResponse(frame, bits), nil
}

func handleReadHoldingRegisters(frame []byte, b *banks.RegisterBanks) ([]byte, error) {
	start := GetUint16BE(frame[2:4])
	qty := GetUint16BE(frame[4:6])
	words, err := b.ReadHoldingWords(start, qty)
	if err != nil {
		return nil, err
	}
	return readResponse(frame, words), nil
}

func handleReadInputRegisters(frame []byte, b *banks.RegisterBanks) ([]byte, error) {
	start := GetUint16BE(frame[2:4])
	qty := GetUint16BE(frame[4:6])
	words, err := b.ReadInputWords(start, qty)
	if err != nil {
		return nil, err
	}
	return readResponse(frame, words), nil
}

func readResponse(frame []byte, payload []byte) []byte {
	resp := make([]byte, 0, 3+len(payload))
	resp = append(resp, frame[0], frame[1], byte(len(payload)))
	resp = append(resp, payload...)
	return resp
}

func handleWriteSingleCoil(frame []byte, b *banks.RegisterBanks) ([]byte, error) {
	addr := GetUint16BE(frame[2:4])
	value := GetUint16BE(frame[4:6])
	if err := b.WriteCoilBit(addr, value); err != nil {
		return nil, err
	}
	return echoRequest(frame), nil
}

func handleWriteSingleRegister(frame []byte, b *banks.RegisterBanks) ([]byte, error) {
	addr := GetUint16BE(frame[2:4])
	value := GetUint16BE(frame[4:6])
	if err := b.WriteHoldingWord(addr, value); err != nil {
		return nil, err
	}
	return echoRequest(frame), nil
}

// echoRequest returns the 6-byte PDU (ID, FUNC, field, field) that
// single-write responses mirror byte-for-byte from the request.
func echoRequest(frame []byte) []byte {
	resp := make([]byte, 6)
	copy(resp, frame[:6])
	return resp
}

func handleWriteMultipleCoils(frame []byte, b *banks.RegisterBanks) ([]byte, error) {
	start := GetUint16BE(frame[2:4])
	qty := GetUint16BE(frame[4:6])
	byteCount := frame[6]
	data := frame[7 : 7+int(byteCount)]
	if err := b.WriteCoilBits(start, qty, data); err != nil {
		return nil, err
	}
	return echoStartQuantity(frame, start, qty), nil
}

func handleWriteMultipleRegisters(frame []byte, b *banks.RegisterBanks) ([]byte, error) {
	start := GetUint16BE(frame[2:4])
	qty := GetUint16BE(frame[4:6])
	byteCount := frame[6]
	data := frame[7 : 7+int(byteCount)]
	if err := b.WriteHoldingWords(start, qty, data); err != nil {
		return nil, err
	}
	return echoStartQuantity(frame, start, qty), nil
}

// echoStartQuantity returns the 6-byte PDU (ID, FUNC, start, qty)
// that the write-multiple responses echo back.
func echoStartQuantity(frame []byte, start, qty uint16) []byte {
	resp := make([]byte, 0, 6)
	resp = append(resp, frame[0], frame[1])
	resp = append(resp, PutUint16BE(start)...)
	resp = append(resp, PutUint16BE(qty)...)
	return resp
}
