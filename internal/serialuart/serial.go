// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package serialuart adapts a physical RS-232/RS-485 line, opened
// through github.com/grid-x/serial, to the engine.UART and
// engine.DirectionLine interfaces. It plays the role the original
// firmware's UART peripheral driver and GPIO direction-line toggle
// played in hardware.
package serialuart

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/grid-x/serial"

	"github.com/ffutop/modbus-engine/internal/config"
)

// Port wraps a grid-x/serial connection. AssertTransmit/AssertReceive
// are always no-ops: Port never drives a direction GPIO itself. When
// the line is RS-485, grid-x/serial's RS485Config asks the driver to
// handle the direction line automatically.
type Port struct {
	cfg serial.Config

	mu   sync.Mutex
	port io.ReadWriteCloser

	byteDrainTime time.Duration // time to shift one byte out at the configured baud rate
	softwareRTS   bool
}

// Open opens the serial line described by cfg. cfg.RS485, when set,
// configures grid-x/serial's automatic RTS toggling, passing the RTS
// delays, RtsHighDuringSend and RxDuringTx straight through to
// RS485Config. Open sets up no software-driven direction line.
func Open(cfg config.SerialConfig) (*Port, error) {
	sc := serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
		Timeout:  cfg.Timeout,
	}
	if cfg.RS485 {
		sc.RS485 = serial.RS485Config{
			Enabled:            true,
			DelayRtsBeforeSend: cfg.DelayRtsBeforeSend,
			DelayRtsAfterSend:  cfg.DelayRtsAfterSend,
			RtsHighDuringSend:  cfg.RtsHighDuringSend,
			RxDuringTx:         cfg.RxDuringTx,
		}
	}

	p, err := serial.Open(&sc)
	if err != nil {
		return nil, fmt.Errorf("serialuart: open %s: %w", cfg.Device, err)
	}

	bitsPerByte := 1 + cfg.DataBits + cfg.StopBits
	if cfg.Parity != "" && cfg.Parity != "N" {
		bitsPerByte++
	}
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = 19200
	}

	return &Port{
		cfg:           sc,
		port:          p,
		byteDrainTime: time.Second * time.Duration(bitsPerByte) / time.Duration(baud),
	}, nil
}

func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	port := p.port
	p.mu.Unlock()
	if port == nil {
		return 0, fmt.Errorf("serialuart: port closed")
	}
	return port.Read(b)
}

func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	port := p.port
	p.mu.Unlock()
	if port == nil {
		return 0, fmt.Errorf("serialuart: port closed")
	}
	return port.Write(b)
}

// AwaitTransmitComplete approximates the original's wait for the
// UART's transmit-complete interrupt: there is no portable way to ask
// a tty driver when its output FIFO has actually drained, so this
// waits on a timer for one byte time at the configured baud rate,
// bounded by ctx. The wait does not grow with the length of the
// frame just written, so bytes still queued in the driver when Write
// returned are not waited for.
func (p *Port) AwaitTransmitComplete(ctx context.Context) error {
	t := time.NewTimer(p.byteDrainTime)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

// AssertTransmit and AssertReceive are no-ops when the line's RS-485
// direction control is handled by grid-x/serial's RS485Config (the
// common case on Linux); they exist so Port satisfies
// engine.DirectionLine for configurations where the caller still
// wants an explicit hook, e.g. logging line turnarounds.
func (p *Port) AssertTransmit() {}
func (p *Port) AssertReceive()  {}
