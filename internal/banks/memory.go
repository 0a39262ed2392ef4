// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package banks

// MemoryStorage is a non-persistent, in-process Storage. It is the
// default — matching spec.md's description of banks as plain
// host-owned arrays with no durability requirement.
type MemoryStorage struct {
	sizes Sizes
}

// NewMemoryStorage creates a Storage that allocates plain Go slices
// and never touches disk.
func NewMemoryStorage(sizes Sizes) *MemoryStorage {
	return &MemoryStorage{sizes: sizes}
}

func (m *MemoryStorage) Load() (*RegisterBanks, error) {
	return New(m.sizes.Coils, m.sizes.DiscreteInputs, m.sizes.HoldingRegisters, m.sizes.InputRegisters), nil
}

func (m *MemoryStorage) Save(*RegisterBanks) error { return nil }

func (m *MemoryStorage) OnWrite(Table, uint16, uint16) {}

func (m *MemoryStorage) Close() error { return nil }
