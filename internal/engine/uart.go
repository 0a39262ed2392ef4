// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import "context"

// UART is the external collaborator spec.md names but does not
// define: the serial driver underneath one RTU instance. Read
// delivers bytes as they arrive off the wire — one byte at a time for
// HWInterruptByte, or a whole idle-triggered chunk for HWDMAIdle.
// Write transmits a complete frame, CRC included.
type UART interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)

	// AwaitTransmitComplete blocks until the last byte of the most
	// recent Write has actually left the shift register, not merely
	// been queued — releasing the RS-485 direction line before that
	// happens truncates the final character. The engine bounds the
	// wait with Config.TxCompleteTimeout. serialuart.Port implements
	// it as a timed wait (a scheduling yield), not a busy spin over a
	// status register.
	AwaitTransmitComplete(ctx context.Context) error

	Close() error
}

// DirectionLine is the GPIO that flips an RS-485 transceiver between
// transmit and receive. Instances without one (point-to-point RS-232,
// or a transceiver the UART peripheral drives automatically) pass nil.
type DirectionLine interface {
	AssertTransmit()
	AssertReceive()
}
