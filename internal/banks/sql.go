// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package banks

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// SQLStorage persists register writes to a relational database. The
// driver (sqlite3, mysql, ...) is registered by the caller via a blank
// import; SQLStorage only needs the driver name and DSN.
type SQLStorage struct {
	driver string
	dsn    string
	db     *sql.DB
	sizes  Sizes
	banks  *RegisterBanks
}

func NewSQLStorage(driver, dsn string, sizes Sizes) *SQLStorage {
	return &SQLStorage{driver: driver, dsn: dsn, sizes: sizes}
}

func (s *SQLStorage) Load() (*RegisterBanks, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("banks: open db: %w", err)
	}
	s.db = db

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("banks: init schema: %w", err)
	}

	b := New(s.sizes.Coils, s.sizes.DiscreteInputs, s.sizes.HoldingRegisters, s.sizes.InputRegisters)
	s.banks = b

	rows, err := db.Query("SELECT table_type, address, value FROM modbus_registers")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("banks: query registers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t, addr, val int
		if err := rows.Scan(&t, &addr, &val); err != nil {
			continue
		}
		switch Table(t) {
		case TableCoils:
			if addr < len(b.Coils) {
				b.Coils[addr] = byte(val)
			}
		case TableDiscreteInputs:
			if addr < len(b.DiscreteInputs) {
				b.DiscreteInputs[addr] = byte(val)
			}
		case TableHoldingRegisters:
			if addr < len(b.HoldingRegisters) {
				b.HoldingRegisters[addr] = uint16(val)
			}
		case TableInputRegisters:
			if addr < len(b.InputRegisters) {
				b.InputRegisters[addr] = uint16(val)
			}
		}
	}

	return b, nil
}

func (s *SQLStorage) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS modbus_registers (
		table_type INTEGER,
		address INTEGER,
		value INTEGER,
		PRIMARY KEY (table_type, address)
	);
	`)
	return err
}

// Save is a no-op: OnWrite upserts every changed register as it
// happens, so a bulk save would only repeat work already done.
func (s *SQLStorage) Save(*RegisterBanks) error { return nil }

// OnWrite upserts the [address, address+quantity) range of table into
// the database, reading the post-write values from the in-memory
// banks returned by Load.
func (s *SQLStorage) OnWrite(table Table, address, quantity uint16) {
	if s.db == nil || s.banks == nil {
		return
	}
	for i := 0; i < int(quantity); i++ {
		addr := int(address) + i
		var val int64
		switch table {
		case TableCoils:
			if addr < len(s.banks.Coils) {
				val = int64(s.banks.Coils[addr])
			}
		case TableDiscreteInputs:
			if addr < len(s.banks.DiscreteInputs) {
				val = int64(s.banks.DiscreteInputs[addr])
			}
		case TableHoldingRegisters:
			if addr < len(s.banks.HoldingRegisters) {
				val = int64(s.banks.HoldingRegisters[addr])
			}
		case TableInputRegisters:
			if addr < len(s.banks.InputRegisters) {
				val = int64(s.banks.InputRegisters[addr])
			}
		}
		_, err := s.db.Exec(
			"INSERT INTO modbus_registers (table_type, address, value) VALUES (?, ?, ?) ON CONFLICT(table_type, address) DO UPDATE SET value=excluded.value",
			int(table), addr, val)
		if err != nil {
			slog.Error("banks: failed to persist register", "table", table, "addr", addr, "err", err)
		}
	}
}

func (s *SQLStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
