// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"

	"github.com/ffutop/modbus-engine/internal/banks"
	"github.com/ffutop/modbus-engine/internal/rtu"
)

// runSlave is the worker loop a slave Instance runs: wait for the
// T3.5 notification, drain the ring buffer, validate, dispatch, and
// reply. It corresponds to the original's StartTaskModbusSlave.
func (i *Instance) runSlave(ctx context.Context) error {
	for {
		if _, _, err := i.notify.Wait(ctx); err != nil {
			return nil
		}

		overflow := i.rxRing.Overflow()
		frame := i.rxRing.Drain()

		if overflow {
			i.recordError(rtu.ErrBufferOverflow)
			continue
		}
		if len(frame) < rtu.MinRequestSize {
			i.recordError(rtu.ErrBadSize)
			continue
		}
		if frame[0] != i.cfg.StationID {
			// Not addressed to us. Broadcasts (ID 0) fall through to
			// this same check and are silently dropped, matching
			// spec.md's flagged-not-fixed broadcast behavior.
			continue
		}

		if vErr := rtu.ValidateRequest(frame, i.banks); vErr != rtu.ErrNone {
			i.recordError(vErr)
			if code, ok := vErr.ExceptionCode(); ok {
				resp := rtu.BuildExceptionFrame(frame[0], frame[1], code)
				i.send(ctx, resp, nil)
			}
			continue
		}

		i.sem.Acquire()
		resp, err := rtu.Dispatch(frame, i.banks)
		i.sem.Release()
		if err != nil {
			i.recordError(rtu.ErrBadSize)
			continue
		}

		if i.storage != nil {
			notifyStorageWrite(i.storage, frame)
		}

		i.sem.Acquire()
		i.inCount++
		i.sem.Release()

		i.send(ctx, resp, nil)
	}
}

// notifyStorageWrite maps a successfully dispatched write request to
// the Storage.OnWrite call it implies. Read requests and unsupported
// function codes are silently ignored.
func notifyStorageWrite(s banks.Storage, frame []byte) {
	switch frame[1] {
	case rtu.FuncWriteSingleCoil:
		s.OnWrite(banks.TableCoils, rtu.GetUint16BE(frame[2:4]), 1)
	case rtu.FuncWriteSingleRegister:
		s.OnWrite(banks.TableHoldingRegisters, rtu.GetUint16BE(frame[2:4]), 1)
	case rtu.FuncWriteMultipleCoils:
		s.OnWrite(banks.TableCoils, rtu.GetUint16BE(frame[2:4]), rtu.GetUint16BE(frame[4:6]))
	case rtu.FuncWriteMultipleRegisters:
		s.OnWrite(banks.TableHoldingRegisters, rtu.GetUint16BE(frame[2:4]), rtu.GetUint16BE(frame[4:6]))
	}
}
