// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/ffutop/modbus-engine/internal/banks"
	"github.com/ffutop/modbus-engine/internal/rtu"
)

type comState int

const (
	comIdle comState = iota
	comWaiting
)

// Instance is one RTU port: a master or a slave, its register banks,
// and the goroutines and kernel-object stand-ins (ring buffer, T3.5
// timer, semaphore, notification box, telegram queue) that drive it.
// It corresponds to the original's modbusHandler_t.
type Instance struct {
	cfg     Config
	banks   *banks.RegisterBanks
	storage banks.Storage // optional, notified after a successful write
	uart    UART
	dir     DirectionLine

	rxRing       *rtu.RingBuffer
	t35Timer     *rtu.OneShotTimer
	timeoutTimer *rtu.OneShotTimer // master only

	sem    semaphore
	notify *notifyBox

	telegramQueue chan queuedTelegram // master only
	pending       Telegram            // master only, the in-flight telegram
	generation    uint64              // master only, bumped per telegram; tags notifications

	state     comState
	lastError rtu.ErrCode
	inCount   uint64
	outCount  uint64
	errCount  uint64
}

// New validates cfg and banks and constructs an Instance. It is the
// Go equivalent of ModbusInit: fatal configuration problems that made
// the original spin forever (while(1)) are returned as an error
// instead.
func New(cfg Config, b *banks.RegisterBanks, uart UART, dir DirectionLine) (*Instance, error) {
	if uart == nil {
		return nil, fmt.Errorf("engine: uart is required")
	}
	if b == nil {
		return nil, fmt.Errorf("engine: register banks are required")
	}
	if cfg.HWMode != HWInterruptByte && cfg.HWMode != HWDMAIdle {
		return nil, fmt.Errorf("engine: unsupported hw mode %v", cfg.HWMode)
	}

	switch cfg.Role {
	case RoleSlave:
		if cfg.StationID == rtu.StationBroadcast || cfg.StationID > rtu.MaxStationID {
			return nil, fmt.Errorf("engine: slave station id %d out of range [1,%d]", cfg.StationID, rtu.MaxStationID)
		}
		if !b.HasHoldingRegisters() {
			return nil, fmt.Errorf("engine: slave requires at least the holding-register bank")
		}
	case RoleMaster:
		if cfg.StationID != rtu.StationBroadcast {
			return nil, fmt.Errorf("engine: master station id must be 0, got %d", cfg.StationID)
		}
	default:
		return nil, fmt.Errorf("engine: role must be %q or %q, got %q", RoleMaster, RoleSlave, cfg.Role)
	}

	if cfg.T35 <= 0 {
		return nil, fmt.Errorf("engine: T35 must be positive")
	}

	i := &Instance{
		cfg:    cfg,
		banks:  b,
		uart:   uart,
		dir:    dir,
		rxRing: rtu.NewRingBuffer(rtu.MinBufferCapacity),
		sem:    newSemaphore(),
		notify: newNotifyBox(),
	}

	if cfg.Role == RoleMaster {
		depth := cfg.MaxTelegrams
		if depth <= 0 {
			depth = defaultMaxTelegrams
		}
		i.telegramQueue = make(chan queuedTelegram, depth)
	}

	return i, nil
}

// Run starts the receive goroutine and the role's worker loop, and
// blocks until ctx is cancelled or the role loop returns. It
// corresponds to Start + the body of StartTaskModbusSlave /
// StartTaskModbusMaster.
func (i *Instance) Run(ctx context.Context) error {
	i.t35Timer = rtu.NewOneShotTimer(i.cfg.T35, func() { i.notify.Notify(rtu.ErrNone, i.currentGeneration()) })
	i.t35Timer.Stop()

	readerDone := make(chan struct{})
	go i.readLoop(ctx, readerDone)

	var err error
	if i.cfg.Role == RoleMaster {
		err = i.runMaster(ctx)
	} else {
		err = i.runSlave(ctx)
	}

	<-readerDone
	i.t35Timer.Stop()
	if i.timeoutTimer != nil {
		i.timeoutTimer.Stop()
	}
	// Combine the role loop's error with the UART close error instead
	// of discarding one of them.
	return multierr.Append(err, i.uart.Close())
}

// readLoop is the Go equivalent of the UART RX interrupt / DMA
// idle-line callback: it pushes bytes into the ring buffer and
// raises the T3.5 condition, either by resetting the silence timer
// (HWInterruptByte) or by notifying the worker directly on every
// completed read (HWDMAIdle, where a single Read already represents
// one idle-triggered chunk).
func (i *Instance) readLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	buf := make([]byte, rtu.MinBufferCapacity)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := i.uart.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Debug("engine: uart read error", "err", err)
			continue
		}
		if n == 0 {
			continue
		}

		for k := 0; k < n; k++ {
			i.rxRing.Push(buf[k])
		}

		if i.cfg.HWMode == HWDMAIdle {
			i.notify.Notify(rtu.ErrNone, i.currentGeneration())
		} else {
			i.t35Timer.Reset(i.cfg.T35)
		}
	}
}

// SetStorage attaches a persistence backend that is notified after
// every successful write handler (FC5/6/15/16) runs on the slave
// side. It is optional; a master Instance never calls it.
func (i *Instance) SetStorage(s banks.Storage) {
	i.storage = s
}

func (i *Instance) recordError(code rtu.ErrCode) {
	i.sem.Acquire()
	i.lastError = code
	i.errCount++
	i.sem.Release()
}

// currentGeneration reports the generation of whichever telegram a
// master Instance currently has outstanding (0, and ignored, for a
// slave). T3.5 and the DMA-idle read path tag their notifications
// with it so a waiter can recognize one meant for a telegram it has
// already stopped waiting on.
func (i *Instance) currentGeneration() uint64 {
	i.sem.Acquire()
	defer i.sem.Release()
	return i.generation
}
