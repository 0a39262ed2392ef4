// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ffutop/modbus-engine/internal/banks"
	"github.com/ffutop/modbus-engine/internal/config"
	"github.com/ffutop/modbus-engine/internal/engine"
	"github.com/ffutop/modbus-engine/internal/serialuart"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	slog.Info("Starting Modbus RTU engine...", "role", cfg.Role, "device", cfg.Serial.Device)

	storage, err := openStorage(cfg.Banks)
	if err != nil {
		slog.Error("Failed to open register bank storage", "err", err)
		os.Exit(1)
	}
	defer storage.Close()

	b, err := storage.Load()
	if err != nil {
		slog.Error("Failed to load register banks", "err", err)
		os.Exit(1)
	}

	port, err := serialuart.Open(cfg.Serial)
	if err != nil {
		slog.Error("Failed to open serial port", "err", err)
		os.Exit(1)
	}

	inst, err := engine.New(engine.Config{
		Role:              engine.Role(cfg.Role),
		StationID:         cfg.StationID,
		HWMode:            engine.HWInterruptByte,
		T35:               resolveT35(cfg.Timing.T35, cfg.Serial.BaudRate),
		ResponseTimeout:   cfg.Timing.ResponseTimeout,
		TxCompleteTimeout: cfg.Timing.TxCompleteTimeout,
	}, b, port, port)
	if err != nil {
		slog.Error("Failed to construct engine instance", "err", err)
		os.Exit(1)
	}
	inst.SetStorage(storage)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- inst.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		slog.Info("Shutting down...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			slog.Error("Engine stopped with error", "err", err)
		}
	}

	slog.Info("Goodbye.")
}

// openStorage selects the register-bank persistence backend named by
// cfg.Persistence.Type. The sql backend requires the caller to have
// blank-imported the appropriate database/sql driver package.
func openStorage(cfg config.BanksConfig) (banks.Storage, error) {
	sizes := banks.Sizes{
		Coils:            cfg.Coils,
		DiscreteInputs:   cfg.DiscreteInputs,
		HoldingRegisters: cfg.HoldingRegisters,
		InputRegisters:   cfg.InputRegisters,
	}

	switch cfg.Persistence.Type {
	case "", "memory":
		return banks.NewMemoryStorage(sizes), nil
	case "file":
		return banks.NewFileStorage(cfg.Persistence.Path, sizes), nil
	case "mmap":
		return banks.NewMmapStorage(cfg.Persistence.Path, sizes), nil
	case "sql":
		return banks.NewSQLStorage(cfg.Persistence.SQLDriver, cfg.Persistence.SQLDSN, sizes), nil
	default:
		return nil, fmt.Errorf("main: unknown persistence type %q", cfg.Persistence.Type)
	}
}

// resolveT35 derives the inter-character silence threshold from the
// line's baud rate when configured is zero, following the Modbus RTU
// rule of 1.5/3.5 character times, floored at 1750us above 19200 baud
// the way the original firmware's timer setup did.
func resolveT35(configured time.Duration, baudRate int) time.Duration {
	if configured > 0 {
		return configured
	}
	if baudRate <= 0 {
		baudRate = 19200
	}
	if baudRate > 19200 {
		return 1750 * time.Microsecond
	}
	charTime := time.Second * 11 / time.Duration(baudRate)
	return charTime * 35 / 10
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
