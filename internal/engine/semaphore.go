// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

// semaphore is the Go stand-in for the original's binary semaphore
// (osSemaphoreNew) guarding the register banks, frame buffer and
// counters during a transaction: a depth-1 buffered channel holding a
// single token.
type semaphore chan struct{}

func newSemaphore() semaphore {
	s := make(semaphore, 1)
	s <- struct{}{}
	return s
}

func (s semaphore) Acquire() { <-s }

func (s semaphore) Release() { s <- struct{}{} }
