// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"
	"sync"
)

// fakeUART is an in-memory stand-in for a physical serial line. Test
// code feeds incoming bytes via deliver and observes transmitted
// frames via the writes channel, one []byte per Write call.
type fakeUART struct {
	mu      sync.Mutex
	inbox   chan []byte
	pending []byte

	writes chan []byte
	closed bool
}

func newFakeUART() *fakeUART {
	return &fakeUART{
		inbox:  make(chan []byte, 64),
		writes: make(chan []byte, 64),
	}
}

// deliver queues a chunk of bytes to be returned by a future Read,
// simulating one UART RX interrupt (or one DMA idle-line chunk).
func (f *fakeUART) deliver(chunk []byte) {
	f.inbox <- chunk
}

func (f *fakeUART) Read(p []byte) (int, error) {
	f.mu.Lock()
	if len(f.pending) == 0 {
		f.mu.Unlock()
		chunk, ok := <-f.inbox
		if !ok {
			return 0, context.Canceled
		}
		f.mu.Lock()
		f.pending = chunk
	}
	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	f.mu.Unlock()
	return n, nil
}

func (f *fakeUART) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	f.writes <- cp
	return len(p), nil
}

func (f *fakeUART) AwaitTransmitComplete(ctx context.Context) error {
	return nil
}

func (f *fakeUART) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.inbox)
	}
	return nil
}
