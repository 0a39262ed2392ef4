// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package banks

import (
	"fmt"
	"log/slog"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MmapStorage backs the register banks with a memory-mapped file, so
// the host survives a process restart without replaying a log and
// without an explicit Save on every write.
type MmapStorage struct {
	path   string
	layout layout
	file   *os.File
	data   mmap.MMap
}

// NewMmapStorage creates a Storage backed by path, sized to hold
// sizes worth of registers.
func NewMmapStorage(path string, sizes Sizes) *MmapStorage {
	return &MmapStorage{path: path, layout: newLayout(sizes)}
}

func (s *MmapStorage) Load() (*RegisterBanks, error) {
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("banks: open mmap file: %w", err)
	}
	s.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("banks: stat mmap file: %w", err)
	}
	if fi.Size() != int64(s.layout.total) {
		if err := f.Truncate(int64(s.layout.total)); err != nil {
			f.Close()
			return nil, fmt.Errorf("banks: resize mmap file: %w", err)
		}
	}

	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("banks: mmap: %w", err)
	}
	s.data = data

	return s.layout.mapBytesToBanks(data), nil
}

func (s *MmapStorage) Save(*RegisterBanks) error {
	if s.data == nil {
		return fmt.Errorf("banks: mmap not loaded")
	}
	return s.data.Flush()
}

func (s *MmapStorage) OnWrite(Table, uint16, uint16) {
	if s.data == nil {
		return
	}
	if err := s.data.Flush(); err != nil {
		slog.Error("banks: failed to flush mmap", "err", err)
	}
}

func (s *MmapStorage) Close() error {
	var err error
	if s.data != nil {
		if e := s.data.Unmap(); e != nil {
			err = e
		}
		s.data = nil
	}
	if s.file != nil {
		if e := s.file.Close(); e != nil {
			err = e
		}
		s.file = nil
	}
	return err
}
