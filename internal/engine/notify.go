// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"

	"github.com/ffutop/modbus-engine/internal/rtu"
)

// notification is the value-overwriting task notification's payload:
// an error code plus the generation of the telegram it pertains to.
// The original serializes the T3.5 and response-timeout callbacks on
// a single FreeRTOS timer-service task, so a timeout can never fire
// after T3.5 already resolved the same telegram; Go's independent
// per-timer goroutines give no such guarantee; this generation tag
// lets a waiter tell a stale timer fire (one started for an earlier
// telegram) apart from a notification meant for the telegram it is
// currently waiting on.
type notification struct {
	code rtu.ErrCode
	gen  uint64
}

// notifyBox is the Go stand-in for the original's value-overwriting
// task notification (xTaskNotify ... eSetValueWithOverwrite /
// ulTaskNotifyTake): a depth-1 channel that a Notify always
// drains-then-refills, so only the most recent value is ever
// delivered and a slow consumer never blocks a producer.
type notifyBox struct {
	ch chan notification
}

func newNotifyBox() *notifyBox {
	return &notifyBox{ch: make(chan notification, 1)}
}

// Notify posts v for generation gen, overwriting any value not yet
// consumed.
func (n *notifyBox) Notify(v rtu.ErrCode, gen uint64) {
	select {
	case <-n.ch:
	default:
	}
	n.ch <- notification{code: v, gen: gen}
}

// Wait blocks until a value is posted or ctx is done.
func (n *notifyBox) Wait(ctx context.Context) (rtu.ErrCode, uint64, error) {
	select {
	case v := <-n.ch:
		return v.code, v.gen, nil
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}
