// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package engine drives the wire-level building blocks in
// internal/rtu with goroutines, timers and channels standing in for
// the FreeRTOS task, software timer, task-notification and binary
// semaphore the original firmware used.
package engine

import "time"

// Role distinguishes a master (client) instance from a slave (server)
// instance. A process that needs both runs two Instances, each with
// its own Config and its own serial line.
type Role string

const (
	RoleMaster Role = "master"
	RoleSlave  Role = "slave"
)

// HWMode selects how bytes arrive from the UART: one interrupt per
// byte, or a DMA idle-line callback that delivers a whole chunk at
// once. Both are expressed behind the same UART interface; HWMode
// only changes whether the engine derives frame boundaries from the
// T3.5 timer or from each Read returning.
type HWMode int

const (
	HWInterruptByte HWMode = iota
	HWDMAIdle
)

// defaultMaxTelegrams is the telegram queue depth when Config.MaxTelegrams is unset.
const defaultMaxTelegrams = 16

// Config describes one RTU instance.
type Config struct {
	Role      Role
	StationID byte // 1..247 for a slave; ignored (must be 0) for a master
	HWMode    HWMode

	// T35 is the inter-character silence gap that ends a frame.
	T35 time.Duration

	// ResponseTimeout bounds how long a master waits for a slave's
	// reply before the query fails with ErrTimeout.
	ResponseTimeout time.Duration

	// TxCompleteTimeout is the failsafe bound on waiting for the
	// transmit-complete notification, matching the original's
	// ulTaskNotifyTake(pdTRUE, 250).
	TxCompleteTimeout time.Duration

	// MaxTelegrams sizes the master's telegram queue. Ignored for slaves.
	MaxTelegrams int
}
