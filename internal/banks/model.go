// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package banks implements the four Modbus register banks a slave
// instance exposes: coils, discrete inputs, holding registers and
// input registers. The host application owns the backing storage; the
// engine only borrows it while the instance semaphore is held.
package banks

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// RegisterBanks holds the host-owned register storage for one
// instance. Any bank may be absent (nil slice, size 0); the validator
// must check presence before doing any address arithmetic against it.
type RegisterBanks struct {
	mu sync.RWMutex

	// Coils is the 0x table: one byte per coil, 0 or 1.
	Coils []byte
	// DiscreteInputs is the 1x table: read-only, one byte per bit.
	DiscreteInputs []byte
	// HoldingRegisters is the 4x table: read/write 16-bit words.
	HoldingRegisters []uint16
	// InputRegisters is the 3x table: read-only 16-bit words.
	InputRegisters []uint16
}

// New builds a RegisterBanks with the given element counts. Passing 0
// for a bank leaves it absent.
func New(coils, discreteInputs, holdingRegs, inputRegs int) *RegisterBanks {
	b := &RegisterBanks{}
	if coils > 0 {
		b.Coils = make([]byte, coils)
	}
	if discreteInputs > 0 {
		b.DiscreteInputs = make([]byte, discreteInputs)
	}
	if holdingRegs > 0 {
		b.HoldingRegisters = make([]uint16, holdingRegs)
	}
	if inputRegs > 0 {
		b.InputRegisters = make([]uint16, inputRegs)
	}
	return b
}

// CoilsSize reports the number of 16-bit words backing the coil bank,
// matching the original's "coils_size" counted in registers of 16 bits
// each, not in individual coils.
func (b *RegisterBanks) CoilsSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return (len(b.Coils) + 15) / 16
}

func (b *RegisterBanks) HoldingRegistersSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.HoldingRegisters)
}

func (b *RegisterBanks) InputRegistersSize() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.InputRegisters)
}

func (b *RegisterBanks) HasCoils() bool           { return b.CoilsSize() > 0 }
func (b *RegisterBanks) HasDiscreteInputs() bool   { return len(b.DiscreteInputs) > 0 }
func (b *RegisterBanks) HasHoldingRegisters() bool { return b.HoldingRegistersSize() > 0 }
func (b *RegisterBanks) HasInputRegisters() bool   { return b.InputRegistersSize() > 0 }

// ReadCoilBits packs `quantity` coils, starting at `address`, into
// Modbus wire format: one bit per coil, LSB-first, packed into bytes.
func (b *RegisterBanks) ReadCoilBits(address, quantity uint16) ([]byte, error) {
	return b.readBits(b.Coils, address, quantity)
}

// ReadDiscreteBits is the read-only equivalent for discrete inputs.
func (b *RegisterBanks) ReadDiscreteBits(address, quantity uint16) ([]byte, error) {
	return b.readBits(b.DiscreteInputs, address, quantity)
}

func (b *RegisterBanks) readBits(table []byte, address, quantity uint16) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(address)+int(quantity) > len(table) {
		return nil, fmt.Errorf("banks: bit range [%d,%d) exceeds table of %d", address, int(address)+int(quantity), len(table))
	}
	byteCount := (int(quantity) + 7) / 8
	out := make([]byte, byteCount)
	for i := 0; i < int(quantity); i++ {
		if table[int(address)+i] != 0 {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out, nil
}

// WriteCoilBit sets a single coil on if value's high byte is 0xFF, off
// otherwise, matching process_FC5's bitWrite(regs, bit, NB_HI ==
// 0xff): the original never ignores a value, it only ever looks at
// the high byte.
func (b *RegisterBanks) WriteCoilBit(address uint16, value uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(address) >= len(b.Coils) {
		return fmt.Errorf("banks: coil address %d out of range", address)
	}
	if value>>8 == 0xFF {
		b.Coils[address] = 1
	} else {
		b.Coils[address] = 0
	}
	return nil
}

// WriteCoilBits writes `quantity` packed coil bits starting at address.
func (b *RegisterBanks) WriteCoilBits(address, quantity uint16, packed []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(address)+int(quantity) > len(b.Coils) {
		return fmt.Errorf("banks: coil range [%d,%d) exceeds table of %d", address, int(address)+int(quantity), len(b.Coils))
	}
	need := (int(quantity) + 7) / 8
	if len(packed) < need {
		return fmt.Errorf("banks: need %d packed bytes, got %d", need, len(packed))
	}
	for i := 0; i < int(quantity); i++ {
		bit := (packed[i/8] >> uint(i%8)) & 1
		b.Coils[int(address)+i] = bit
	}
	return nil
}

// ReadHoldingWords returns `quantity` holding registers starting at
// address, big-endian packed, matching Modbus wire order.
func (b *RegisterBanks) ReadHoldingWords(address, quantity uint16) ([]byte, error) {
	return b.readWords(b.HoldingRegisters, address, quantity)
}

// ReadInputWords is the read-only equivalent for input registers.
func (b *RegisterBanks) ReadInputWords(address, quantity uint16) ([]byte, error) {
	return b.readWords(b.InputRegisters, address, quantity)
}

func (b *RegisterBanks) readWords(table []uint16, address, quantity uint16) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(address)+int(quantity) > len(table) {
		return nil, fmt.Errorf("banks: register range [%d,%d) exceeds table of %d", address, int(address)+int(quantity), len(table))
	}
	out := make([]byte, int(quantity)*2)
	for i := 0; i < int(quantity); i++ {
		binary.BigEndian.PutUint16(out[i*2:], table[int(address)+i])
	}
	return out, nil
}

// WriteHoldingWord writes a single holding register.
func (b *RegisterBanks) WriteHoldingWord(address uint16, value uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(address) >= len(b.HoldingRegisters) {
		return fmt.Errorf("banks: register address %d out of range", address)
	}
	b.HoldingRegisters[address] = value
	return nil
}

// WriteHoldingWords writes `quantity` big-endian-packed registers
// starting at address.
func (b *RegisterBanks) WriteHoldingWords(address, quantity uint16, packed []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(address)+int(quantity) > len(b.HoldingRegisters) {
		return fmt.Errorf("banks: register range [%d,%d) exceeds table of %d", address, int(address)+int(quantity), len(b.HoldingRegisters))
	}
	if len(packed) < int(quantity)*2 {
		return fmt.Errorf("banks: need %d bytes, got %d", int(quantity)*2, len(packed))
	}
	for i := 0; i < int(quantity); i++ {
		b.HoldingRegisters[int(address)+i] = binary.BigEndian.Uint16(packed[i*2:])
	}
	return nil
}
