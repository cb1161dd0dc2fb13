// Package queue implements a bounded MPMC ring queue: a fixed,
// power-of-two capacity Vyukov ring used both as the free-slot pool
// inside a task pool and, with an attached semaphore, as the
// process-wide steal bus.
package queue

import "go.uber.org/atomic"

type cell[T any] struct {
	sequence atomic.Uint64
	value    T
}

// Ring is a fixed-capacity, power-of-two MPMC ring queue. The zero value
// is not usable; construct with NewRing.
type Ring[T any] struct {
	buffer []cell[T]
	mask   uint64
	head   atomic.Uint64 // dequeue cursor
	tail   atomic.Uint64 // enqueue cursor
}

// NewRing creates a ring queue of the given capacity, which must be a
// power of two. A non-power-of-two capacity panics: callers (PoolStorage
// sizing, StealBus construction) are expected to validate capacity ahead
// of time.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("queue: capacity must be a positive power of two")
	}
	r := &Ring[T]{
		buffer: make([]cell[T], capacity),
		mask:   uint64(capacity - 1),
	}
	for i := range r.buffer {
		r.buffer[i].sequence.Store(uint64(i))
	}
	return r
}

// Cap returns the queue's fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buffer) }

// Push enqueues value, returning false if the queue is full.
func (r *Ring[T]) Push(value T) bool {
	for {
		pos := r.tail.Load()
		c := &r.buffer[pos&r.mask]
		seq := c.sequence.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if r.tail.CompareAndSwap(pos, pos+1) {
				c.value = value
				c.sequence.Store(pos + 1)
				return true
			}
		case diff < 0:
			return false
		}
		// diff > 0: another producer raced ahead; reload and retry.
	}
}

// Take dequeues a value, returning false if the queue is empty.
func (r *Ring[T]) Take() (T, bool) {
	for {
		pos := r.head.Load()
		c := &r.buffer[pos&r.mask]
		seq := c.sequence.Load()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if r.head.CompareAndSwap(pos, pos+1) {
				val := c.value
				var zero T
				c.value = zero
				c.sequence.Store(pos + uint64(len(r.buffer)))
				return val, true
			}
		case diff < 0:
			var zero T
			return zero, false
		}
	}
}

// Len returns an approximate occupancy, valid only when quiesced.
func (r *Ring[T]) Len() int {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}
