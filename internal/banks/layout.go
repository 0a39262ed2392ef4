// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package banks

import "unsafe"

// layout describes how the four banks are packed into one flat byte
// region, used by both the file- and mmap-backed storage strategies so
// a data file written by one can be read by the other.
type layout struct {
	sizes Sizes

	offsetCoils    int
	offsetDiscrete int
	offsetHolding  int
	offsetInput    int
	total          int
}

func newLayout(sizes Sizes) layout {
	l := layout{sizes: sizes}
	l.offsetCoils = 0
	l.offsetDiscrete = l.offsetCoils + sizes.Coils
	l.offsetHolding = l.offsetDiscrete + sizes.DiscreteInputs
	l.offsetInput = l.offsetHolding + sizes.HoldingRegisters*2
	l.total = l.offsetInput + sizes.InputRegisters*2
	return l
}

// mapBytesToBanks constructs a RegisterBanks backed by data, which
// must be at least l.total bytes. The holding/input register slices
// alias data directly, so writes through RegisterBanks are visible in
// data without a copy — the same zero-copy trick the teacher's mmap
// storage used, now parameterized over configurable bank sizes instead
// of a fixed 64K address space per table.
func (l layout) mapBytesToBanks(data []byte) *RegisterBanks {
	b := &RegisterBanks{}
	if l.sizes.Coils > 0 {
		b.Coils = data[l.offsetCoils : l.offsetCoils+l.sizes.Coils]
	}
	if l.sizes.DiscreteInputs > 0 {
		b.DiscreteInputs = data[l.offsetDiscrete : l.offsetDiscrete+l.sizes.DiscreteInputs]
	}
	if l.sizes.HoldingRegisters > 0 {
		holdingBytes := data[l.offsetHolding : l.offsetHolding+l.sizes.HoldingRegisters*2]
		b.HoldingRegisters = unsafe.Slice((*uint16)(unsafe.Pointer(&holdingBytes[0])), l.sizes.HoldingRegisters)
	}
	if l.sizes.InputRegisters > 0 {
		inputBytes := data[l.offsetInput : l.offsetInput+l.sizes.InputRegisters*2]
		b.InputRegisters = unsafe.Slice((*uint16)(unsafe.Pointer(&inputBytes[0])), l.sizes.InputRegisters)
	}
	return b
}
