// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"

	"github.com/ffutop/modbus-engine/internal/rtu"
)

// runMaster is the worker loop a master Instance runs: pull one
// telegram at a time off the queue, drive it to completion, and post
// the result back to whichever goroutine enqueued it. It corresponds
// to the original's StartTaskModbusMaster.
func (i *Instance) runMaster(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case qt := <-i.telegramQueue:
			code := i.sendQuery(ctx, qt.telegram)
			qt.result <- NotifyResult{Code: code}
		}
	}
}

// sendQuery drives a single telegram: validate preconditions, send
// the request, wait for either a parsed answer (T3.5 fired after the
// slave replied) or the response-timeout timer, and apply the result.
// It corresponds to the original's sendRequest plus the notification
// handling at the top of the master task's loop body.
func (i *Instance) sendQuery(ctx context.Context, t Telegram) rtu.ErrCode {
	i.sem.Acquire()
	if i.cfg.Role != RoleMaster {
		i.sem.Release()
		return rtu.ErrNotMaster
	}
	if i.state != comIdle {
		i.sem.Release()
		return rtu.ErrPolling
	}
	if t.StationID == rtu.StationBroadcast || t.StationID > rtu.MaxStationID {
		i.sem.Release()
		return rtu.ErrBadSlaveID
	}
	frame := buildRequestFrame(t)
	if frame == nil {
		i.sem.Release()
		return rtu.ErrIllegalFunction
	}
	i.generation++
	gen := i.generation
	i.pending = t
	i.state = comWaiting
	i.sem.Release()

	onSent := func() {
		i.timeoutTimer = rtu.NewOneShotTimer(i.cfg.ResponseTimeout, func() {
			i.notify.Notify(rtu.ErrTimeout, gen)
		})
	}

	if err := i.send(ctx, frame, onSent); err != nil {
		i.sem.Acquire()
		i.state = comIdle
		i.sem.Release()
		i.recordError(rtu.ErrBadSize)
		return rtu.ErrBadSize
	}

	// Loop past stale notifications: the original serializes the T3.5
	// and response-timeout callbacks on one timer-service task, so a
	// timeout can never fire after T3.5 already resolved the same
	// telegram. Go's two independent timer goroutines give no such
	// guarantee — stopping timeoutTimer below races an already-running
	// callback — so every notification is tagged with the generation
	// it was armed for, and one that doesn't match gen (a timeout left
	// over from a telegram this call has already moved past) is
	// discarded instead of being mistaken for this telegram's result.
	var code rtu.ErrCode
	for {
		var notifiedGen uint64
		var werr error
		code, notifiedGen, werr = i.notify.Wait(ctx)
		if werr != nil {
			i.sem.Acquire()
			i.state = comIdle
			i.sem.Release()
			return rtu.ErrTimeout
		}
		if notifiedGen != gen {
			continue
		}
		break
	}

	if code == rtu.ErrTimeout {
		i.sem.Acquire()
		i.state = comIdle
		i.sem.Release()
		i.recordError(rtu.ErrTimeout)
		return rtu.ErrTimeout
	}

	// code == ErrNone: T3.5 fired, meaning bytes arrived and went
	// quiet. The response-timeout timer is now moot.
	if i.timeoutTimer != nil {
		i.timeoutTimer.Stop()
	}

	overflow := i.rxRing.Overflow()
	answer := i.rxRing.Drain()

	i.sem.Acquire()
	i.state = comIdle
	i.sem.Release()

	if overflow {
		i.recordError(rtu.ErrBufferOverflow)
		return rtu.ErrBufferOverflow
	}
	if len(answer) < rtu.MinResponseSize {
		i.recordError(rtu.ErrBadSize)
		return rtu.ErrBadSize
	}

	if vErr := rtu.ValidateAnswer(answer); vErr != rtu.ErrNone {
		i.recordError(vErr)
		return vErr
	}

	applyAnswer(answer, t)
	i.sem.Acquire()
	i.inCount++
	i.lastError = rtu.ErrOKQuery
	i.sem.Release()
	return rtu.ErrOKQuery
}
