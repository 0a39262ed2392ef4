// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package banks

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// FileStorage persists the banks with plain read/write syscalls
// instead of mmap, for hosts that would rather not map a file into
// their address space (e.g. constrained containers without mmap
// permissions).
type FileStorage struct {
	path   string
	layout layout
	file   *os.File
	data   []byte
}

func NewFileStorage(path string, sizes Sizes) *FileStorage {
	return &FileStorage{path: path, layout: newLayout(sizes)}
}

func (s *FileStorage) Load() (*RegisterBanks, error) {
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("banks: open file: %w", err)
	}
	s.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("banks: stat file: %w", err)
	}
	if fi.Size() != int64(s.layout.total) {
		if err := f.Truncate(int64(s.layout.total)); err != nil {
			f.Close()
			return nil, fmt.Errorf("banks: resize file: %w", err)
		}
	}

	data, err := io.ReadAll(io.NewSectionReader(f, 0, int64(s.layout.total)))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("banks: read file: %w", err)
	}
	s.data = data

	return s.layout.mapBytesToBanks(data), nil
}

func (s *FileStorage) Save(*RegisterBanks) error {
	return s.sync()
}

func (s *FileStorage) OnWrite(Table, uint16, uint16) {
	if err := s.sync(); err != nil {
		slog.Error("banks: failed to sync file", "err", err)
	}
}

func (s *FileStorage) sync() error {
	if s.data == nil || s.file == nil {
		return nil
	}
	if _, err := s.file.WriteAt(s.data, 0); err != nil {
		return fmt.Errorf("banks: write file: %w", err)
	}
	return s.file.Sync()
}

func (s *FileStorage) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
