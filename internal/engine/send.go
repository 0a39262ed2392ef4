// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ffutop/modbus-engine/internal/rtu"
)

// send is the common path for both roles: append the CRC, assert the
// direction line, transmit, wait for the line to actually drain, then
// release the direction line and re-enable receive. onSent, when
// non-nil, runs once the frame is physically on the wire — the master
// uses it to start the response-timeout timer, matching the original
// sendTxBuffer's last step of the send path.
func (i *Instance) send(ctx context.Context, frame []byte, onSent func()) error {
	withCRC := rtu.AppendCRC(frame)

	if i.dir != nil {
		i.dir.AssertTransmit()
	}

	if _, err := i.uart.Write(withCRC); err != nil {
		if i.dir != nil {
			i.dir.AssertReceive()
		}
		return fmt.Errorf("engine: write frame: %w", err)
	}

	txCtx, cancel := context.WithTimeout(ctx, i.cfg.TxCompleteTimeout)
	if err := i.uart.AwaitTransmitComplete(txCtx); err != nil {
		// The 250-tick failsafe: the original proceeds regardless,
		// since not releasing the direction line would wedge the
		// instance forever on a misbehaving transport.
		slog.Warn("engine: transmit-complete wait failed, proceeding", "err", err)
	}
	cancel()

	if i.dir != nil {
		i.dir.AssertReceive()
	}

	i.sem.Acquire()
	i.outCount++
	i.sem.Release()
	if onSent != nil {
		onSent()
	}
	return nil
}
