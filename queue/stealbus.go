package queue

import "github.com/go-foundations/taskcore/atomics"

// DefaultStealBusCapacity is the default steal-bus capacity, independent
// of any individual pool's capacity.
const DefaultStealBusCapacity = 65536

// StealBus is the process-wide MPMC queue + semaphore that notifies idle
// workers a pool has ready work. It carries pool indices, not task IDs.
type StealBus struct {
	ring *Ring[uint32]
	sem  *atomics.FastSemaphore
}

// NewStealBus creates a steal bus with the given capacity (rounded by the
// caller to a power of two; DefaultStealBusCapacity is a sane default).
func NewStealBus(capacity int) *StealBus {
	return &StealBus{
		ring: NewRing[uint32](capacity),
		sem:  atomics.NewFastSemaphore(0),
	}
}

// Notify posts a pool index onto the bus and wakes one idle worker.
// Returns false if the bus is saturated (callers treat this as a
// best-effort notification and do not retry).
func (b *StealBus) Notify(poolIndex uint32) bool {
	if !b.ring.Push(poolIndex) {
		return false
	}
	b.sem.Post()
	return true
}

// Take blocks, spinning up to spinCount times before parking, until a
// pool index is available, then returns it.
func (b *StealBus) Take(spinCount int) uint32 {
	for {
		b.sem.Wait(spinCount)
		if idx, ok := b.ring.Take(); ok {
			return idx
		}
		// Semaphore count and ring occupancy can transiently disagree
		// under concurrent Take; loop back and wait again.
	}
}

// TryTake attempts a non-blocking take.
func (b *StealBus) TryTake() (uint32, bool) {
	if !b.sem.TryWait() {
		return 0, false
	}
	return b.ring.Take()
}
