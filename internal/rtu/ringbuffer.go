// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

// RingBuffer is the bounded byte FIFO sitting between the UART
// receive path and the worker goroutine that assembles frames.
// Single-producer/single-consumer: Push is only ever called from the
// goroutine reading the UART, Drain only from the instance's worker
// goroutine, grounded on the original firmware's RingAdd/
// RingGetAllBytes, which require RX interrupts masked around exactly
// the same two operations. Go has no interrupt-masking primitive to
// borrow, so that discipline is a documented contract instead of an
// enforced one.
type RingBuffer struct {
	buf       []byte
	start     int
	end       int
	available int
	overflow  bool
}

// NewRingBuffer allocates a RingBuffer of the given capacity, which
// must be at least MinBufferCapacity to meet the instance handle's
// invariant.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < MinBufferCapacity {
		capacity = MinBufferCapacity
	}
	return &RingBuffer{buf: make([]byte, capacity)}
}

// Push adds one byte. When the buffer is already full, it keeps the
// newest byte by discarding the oldest one and sets Overflow, which
// stays set until the next full Drain.
func (r *RingBuffer) Push(b byte) {
	r.buf[r.end] = b
	r.end = (r.end + 1) % len(r.buf)
	if r.available == len(r.buf) {
		r.overflow = true
		r.start = (r.start + 1) % len(r.buf)
	} else {
		r.available++
	}
}

// Drain removes every available byte and returns them as a new
// slice, clearing Overflow.
func (r *RingBuffer) Drain() []byte {
	out := make([]byte, r.available)
	for i := range out {
		out[i] = r.buf[r.start]
		r.start = (r.start + 1) % len(r.buf)
	}
	r.available = 0
	r.overflow = false
	r.start = 0
	r.end = 0
	return out
}

// Count reports the number of bytes currently available to Drain.
func (r *RingBuffer) Count() int { return r.available }

// Overflow reports whether a byte has been dropped since the last
// full Drain.
func (r *RingBuffer) Overflow() bool { return r.overflow }

// Clear discards every buffered byte without returning them.
func (r *RingBuffer) Clear() {
	r.start = 0
	r.end = 0
	r.available = 0
	r.overflow = false
}

// Capacity reports the maximum number of bytes the buffer can hold.
func (r *RingBuffer) Capacity() int { return len(r.buf) }
