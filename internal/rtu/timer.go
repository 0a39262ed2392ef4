// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"sync"
	"time"
)

// OneShotTimer wraps a time.Timer the way the original firmware used
// a FreeRTOS one-shot software timer (xTimerCreate with pdFALSE
// auto-reload): restarted on activity, its expiry fires a callback
// exactly once until reset again. The callback is supplied by the
// caller as a closure over its owning instance, rather than looked up
// in a process-wide handle table the way vTimerCallbackT35 and
// vTimerCallbackTimeout did — see the design notes on dropping the
// registry.
type OneShotTimer struct {
	mu    sync.Mutex
	timer *time.Timer
	fn    func()
}

// NewOneShotTimer creates a timer that calls fn once after period,
// unless Reset or Stop is called first. The timer starts armed.
func NewOneShotTimer(period time.Duration, fn func()) *OneShotTimer {
	t := &OneShotTimer{fn: fn}
	t.timer = time.AfterFunc(period, fn)
	return t
}

// Reset restarts the timer's period, as if it had just been created.
func (t *OneShotTimer) Reset(period time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer.Reset(period)
}

// Stop prevents the timer from firing if it hasn't already.
func (t *OneShotTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer.Stop()
}
