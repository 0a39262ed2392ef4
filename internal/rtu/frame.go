// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"encoding/binary"

	"github.com/ffutop/modbus-engine/modbus/crc"
)

// ComputeCRC returns the CRC-16/MODBUS checksum of data.
func ComputeCRC(data []byte) uint16 {
	var c crc.CRC
	c.Reset().PushBytes(data)
	return c.Value()
}

// AppendCRC appends the CRC of frame to itself, low byte first, high
// byte second — the order the original firmware produced by
// byte-swapping calcCRC's result before a two-byte memcpy.
func AppendCRC(frame []byte) []byte {
	sum := ComputeCRC(frame)
	return append(frame, byte(sum), byte(sum>>8))
}

// VerifyCRC reports whether the trailing two bytes of frame match the
// CRC of everything before them. frame must be at least MinWireSize
// bytes long.
func VerifyCRC(frame []byte) bool {
	if len(frame) < MinWireSize {
		return false
	}
	body := frame[:len(frame)-2]
	want := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8
	return ComputeCRC(body) == want
}

// BuildExceptionFrame builds the 3-byte PDU (ID, FUNC|0x80, code) for
// an exception response. The caller appends the CRC via AppendCRC as
// part of the send path, matching the original's buildException,
// which leaves CRC to sendTxBuffer.
func BuildExceptionFrame(stationID, functionCode, exceptionCode byte) []byte {
	return []byte{stationID, functionCode | ExceptionFlag, exceptionCode}
}

// PutUint16BE writes v as a big-endian 16-bit word, the wire order
// used for every address/quantity/value field (ADD_HI:ADD_LO,
// NB_HI:NB_LO).
func PutUint16BE(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// GetUint16BE reads a big-endian 16-bit word from the start of b.
func GetUint16BE(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}
