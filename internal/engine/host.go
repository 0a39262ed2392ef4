// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"
	"fmt"

	"github.com/ffutop/modbus-engine/internal/rtu"
)

// Query enqueues t on a master Instance and blocks until the slave
// answers, the response times out, or ctx is cancelled first. It is
// the host-facing replacement for the original's opaque-handle query
// API: the caller's own goroutine IS the waiting handle.
func (i *Instance) Query(ctx context.Context, t Telegram) (NotifyResult, error) {
	if i.cfg.Role != RoleMaster {
		return NotifyResult{}, fmt.Errorf("engine: Query called on a non-master instance")
	}

	qt := queuedTelegram{telegram: t, result: make(chan NotifyResult, 1)}

	select {
	case i.telegramQueue <- qt:
	case <-ctx.Done():
		return NotifyResult{}, ctx.Err()
	}

	select {
	case res := <-qt.result:
		return res, nil
	case <-ctx.Done():
		return NotifyResult{}, ctx.Err()
	}
}

// QueryInject enqueues t ahead of whatever is already queued by
// draining and discarding every pending telegram first, notifying
// each discarded caller with ErrPolling. It corresponds to the
// original's priority-injection path for a time-critical query.
func (i *Instance) QueryInject(ctx context.Context, t Telegram) (NotifyResult, error) {
	if i.cfg.Role != RoleMaster {
		return NotifyResult{}, fmt.Errorf("engine: QueryInject called on a non-master instance")
	}

	for {
		select {
		case discarded := <-i.telegramQueue:
			discarded.result <- NotifyResult{Code: rtu.ErrPolling}
		default:
			return i.Query(ctx, t)
		}
	}
}

// LastError reports the most recent error code recorded by either
// worker loop.
func (i *Instance) LastError() rtu.ErrCode {
	i.sem.Acquire()
	defer i.sem.Release()
	return i.lastError
}

// Counters reports the running input/output/error telegram counts,
// the equivalent of the original's diagnostic counters.
func (i *Instance) Counters() (in, out, errs uint64) {
	i.sem.Acquire()
	defer i.sem.Release()
	return i.inCount, i.outCount, i.errCount
}
