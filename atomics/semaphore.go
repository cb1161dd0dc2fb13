package atomics

import (
	"context"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

// FastSemaphore is a userspace-fast counting semaphore: the common case of
// an uncontended post/wait pair never touches the OS semaphore underneath.
// It spins briefly on an atomic decrement, then blocks only on exhaustion,
// delegating the actual blocking primitive to
// golang.org/x/sync/semaphore.Weighted.
type FastSemaphore struct {
	count atomic.Int32
	os    *semaphore.Weighted
}

// NewFastSemaphore creates a semaphore with the given initial count.
func NewFastSemaphore(initial int32) *FastSemaphore {
	s := &FastSemaphore{os: semaphore.NewWeighted(1 << 30)}
	s.count.Store(initial)
	// Pre-acquire everything so the weighted semaphore starts "empty":
	// a waiter can only proceed once Post releases units back.
	_ = s.os.Acquire(context.Background(), 1<<30)
	return s
}

// Wait spins up to spinCount times attempting a lock-free decrement while
// the counter is positive, then falls back to an atomic decrement and, if
// the post-decrement value is negative, blocks on the OS semaphore.
func (s *FastSemaphore) Wait(spinCount int) {
	for i := 0; i < spinCount; i++ {
		if c := s.count.Load(); c > 0 {
			if s.count.CompareAndSwap(c, c-1) {
				return
			}
		}
	}

	if s.count.Dec() < 0 {
		_ = s.os.Acquire(context.Background(), 1)
	}
}

// Post increments the counter and, if the pre-increment value was
// negative (meaning a waiter is blocked), releases one waiter.
func (s *FastSemaphore) Post() {
	if s.count.Inc()-1 < 0 {
		s.os.Release(1)
	}
}

// PostMany adds n to the counter and releases min(waiters, n) blocked
// waiters, where waiters is the number of threads parked below zero
// before this call.
func (s *FastSemaphore) PostMany(n int32) {
	if n <= 0 {
		return
	}
	prior := s.count.Add(n) - n
	if prior < 0 {
		waiters := -prior
		toRelease := n
		if waiters < toRelease {
			toRelease = waiters
		}
		if toRelease > 0 {
			s.os.Release(int64(toRelease))
		}
	}
}

// TryWait attempts a non-blocking decrement, succeeding only via a CAS
// from a strictly positive count.
func (s *FastSemaphore) TryWait() bool {
	for {
		c := s.count.Load()
		if c <= 0 {
			return false
		}
		if s.count.CompareAndSwap(c, c-1) {
			return true
		}
	}
}

// Count returns the current logical counter value, for diagnostics.
func (s *FastSemaphore) Count() int32 {
	return s.count.Load()
}
