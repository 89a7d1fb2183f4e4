// Package capture records edge timings from a GPIO interrupt.
package capture

import (
	"sync/atomic"

	"multitool/sparkos/rf/pulse"
)

// DefaultCapacity is the number of samples a capture session can buffer
// between drains.
const DefaultCapacity = 512

// Buffer is a single-producer, single-consumer queue of edge timings.
//
// The producer is the interrupt handler calling OnEdge; it owns head and the
// edge timestamp. The consumer owns tail and calls Drain/Pending. The producer
// stores the sample before publishing head, and the consumer loads head before
// reading samples, so a published slot is always fully written.
type Buffer struct {
	_    [0]func() // prevent accidental copying.
	head atomic.Uint32
	tail atomic.Uint32
	mask uint32
	buf  []pulse.Sample

	dropped atomic.Uint32

	// Producer-only.
	lastEdge uint64
	seeded   bool
}

// New returns a buffer holding at least capacity samples. The capacity is
// rounded up to a power of two; zero selects DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &Buffer{mask: uint32(n - 1), buf: make([]pulse.Sample, n)}
}

// Cap returns the number of samples the buffer can hold.
func (b *Buffer) Cap() int { return len(b.buf) }

// Reset empties the buffer and forgets the last edge. The interrupt must be
// detached while Reset runs.
func (b *Buffer) Reset() {
	b.head.Store(0)
	b.tail.Store(0)
	b.dropped.Store(0)
	b.lastEdge = 0
	b.seeded = false
	for i := range b.buf {
		b.buf[i] = 0
	}
}

// OnEdge records the interval that ended at nowUs. level is the pin level
// after the edge, so the finished interval had the opposite level. The first
// edge after Reset only seeds the timestamp. When the buffer is full the
// sample is dropped.
//
// OnEdge runs in interrupt context: it does not allocate, block or log.
func (b *Buffer) OnEdge(nowUs uint64, level bool) {
	if !b.seeded {
		b.lastEdge = nowUs
		b.seeded = true
		return
	}

	d := nowUs - b.lastEdge
	b.lastEdge = nowUs
	if d > pulse.MaxDuration {
		d = pulse.MaxDuration
	}
	s := pulse.Sample(d)
	if level {
		s = -s
	}

	head := b.head.Load()
	if head-b.tail.Load() >= uint32(len(b.buf)) {
		b.dropped.Add(1)
		return
	}
	b.buf[head&b.mask] = s
	b.head.Store(head + 1)
}

// Pending returns the number of samples waiting to be drained.
func (b *Buffer) Pending() int {
	return int(b.head.Load() - b.tail.Load())
}

// Dropped returns how many samples were lost to a full buffer since Reset.
func (b *Buffer) Dropped() uint32 { return b.dropped.Load() }

// Drain copies pending samples into dst in capture order, up to len(dst), and
// returns how many were copied.
func (b *Buffer) Drain(dst []pulse.Sample) int {
	tail := b.tail.Load()
	avail := b.head.Load() - tail
	n := uint32(len(dst))
	if avail < n {
		n = avail
	}
	for i := uint32(0); i < n; i++ {
		dst[i] = b.buf[(tail+i)&b.mask]
	}
	b.tail.Store(tail + n)
	return int(n)
}

// DrainAll returns every pending sample in a new slice.
func (b *Buffer) DrainAll() []pulse.Sample {
	out := make([]pulse.Sample, b.Pending())
	return out[:b.Drain(out)]
}
