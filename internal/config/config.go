// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package config loads the settings for one Modbus RTU instance: its
// role (master or slave), serial line parameters, register bank
// sizes and persistence, and the timing constants that drive framing
// and master timeouts.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for a single engine instance. A
// process that needs both a master and a slave role runs two
// instances, each with its own Config and its own serial line.
type Config struct {
	Role      string `mapstructure:"role"`       // "master" or "slave"
	StationID byte   `mapstructure:"station_id"` // slave address; must be 0 for master

	Serial SerialConfig `mapstructure:"serial"`
	Banks  BanksConfig  `mapstructure:"banks"`
	Timing TimingConfig `mapstructure:"timing"`
	Log    LogConfig    `mapstructure:"log"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // empty or "-" means stdout
}

// SerialConfig describes the physical RS-232/RS-485 line.
type SerialConfig struct {
	Device   string `mapstructure:"device"`
	BaudRate int    `mapstructure:"baud_rate"`
	DataBits int    `mapstructure:"data_bits"`
	Parity   string `mapstructure:"parity"`
	StopBits int    `mapstructure:"stop_bits"`

	Timeout time.Duration `mapstructure:"timeout"`

	// RS485 specific: passed through to grid-x/serial's RS485Config,
	// which lets the driver toggle RTS around each transmission.
	RS485              bool          `mapstructure:"rs485"`
	DelayRtsBeforeSend time.Duration `mapstructure:"delay_rts_before_send"`
	DelayRtsAfterSend  time.Duration `mapstructure:"delay_rts_after_send"`
	RtsHighDuringSend  bool          `mapstructure:"rts_high_during_send"`
	RxDuringTx         bool          `mapstructure:"rx_during_tx"`
}

// BanksConfig sizes the four register banks and selects how they are
// persisted. A size of 0 leaves that bank absent.
type BanksConfig struct {
	Coils            int `mapstructure:"coils"`
	DiscreteInputs   int `mapstructure:"discrete_inputs"`
	HoldingRegisters int `mapstructure:"holding_registers"`
	InputRegisters   int `mapstructure:"input_registers"`

	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// PersistenceConfig selects the Storage backend for the register banks.
type PersistenceConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap", "sql"
	Path string `mapstructure:"path"` // file path for "file"/"mmap"

	SQLDriver string `mapstructure:"sql_driver"`
	SQLDSN    string `mapstructure:"sql_dsn"`
}

// TimingConfig holds the inter-character and response-timeout
// constants that would be FreeRTOS software-timer periods on the
// original firmware.
type TimingConfig struct {
	// T35 is the inter-character silence gap that ends a frame. It is
	// a function of baud rate; a value of 0 tells the engine to derive
	// it from Serial.BaudRate the way the original firmware did.
	T35 time.Duration `mapstructure:"t35"`

	// ResponseTimeout bounds how long a master waits for a slave's
	// reply before declaring the query timed out.
	ResponseTimeout time.Duration `mapstructure:"response_timeout"`

	// TxCompleteTimeout is the failsafe bound on waiting for the
	// transmit-complete notification, matching the original's
	// ulTaskNotifyTake(pdTRUE, 250).
	TxCompleteTimeout time.Duration `mapstructure:"tx_complete_timeout"`
}

// Load reads configuration from configFile, or from the conventional
// search path when configFile is empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/modbus-engine/")
		v.AddConfigPath("$HOME/.modbus-engine")
		v.AddConfigPath(".")
	}

	v.SetDefault("role", "slave")
	v.SetDefault("log.level", "info")
	v.SetDefault("serial.baud_rate", 19200)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.parity", "E")
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("banks.persistence.type", "memory")
	v.SetDefault("timing.response_timeout", 1*time.Second)
	v.SetDefault("timing.tx_complete_timeout", 250*time.Millisecond)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
		return nil, fmt.Errorf("config: no config file found: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Serial.Parity = strings.ToUpper(cfg.Serial.Parity)
	if cfg.Serial.Timeout == 0 {
		cfg.Serial.Timeout = 500 * time.Millisecond
	}
	if cfg.Role != "master" && cfg.Role != "slave" {
		return nil, fmt.Errorf("config: role must be \"master\" or \"slave\", got %q", cfg.Role)
	}

	return &cfg, nil
}
