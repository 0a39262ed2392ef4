// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package banks

// Sizes describes how many elements each bank should have. A zero
// count leaves the corresponding bank absent, per spec.md's "bank may
// be absent" rule.
type Sizes struct {
	Coils            int
	DiscreteInputs   int
	HoldingRegisters int
	InputRegisters   int
}

// Storage is how the host application persists (or doesn't) the
// register banks across restarts. The host calls Load, Save and
// Close; the engine only calls OnWrite, on a Storage attached with
// Instance.SetStorage. A storage-backed bank lets the host recover state
// after a crash, which is the entire point of calling these registers
// "non-volatile" in a SCADA deployment.
type Storage interface {
	// Load returns the (possibly freshly created) register banks.
	Load() (*RegisterBanks, error)

	// Save persists the current contents of the banks. Not all
	// storage strategies need an explicit Save: ones that sync on
	// every write (mmap, file, sql) can make this a no-op.
	Save(b *RegisterBanks) error

	// OnWrite is invoked by the engine's slave loop after every successful write
	// handler (FC5/6/15/16) so that the storage can do real-time
	// persistence. table identifies which bank changed.
	OnWrite(table Table, address, quantity uint16)

	// Close releases any file descriptors or connections.
	Close() error
}

// Table identifies one of the four register banks, used by
// Storage.OnWrite to know which region changed.
type Table int

const (
	TableCoils Table = iota
	TableDiscreteInputs
	TableHoldingRegisters
	TableInputRegisters
)
