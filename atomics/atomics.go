// Package atomics provides aligned atomic load/store/CAS/fetch-add
// primitives for 32- and 64-bit words, plus a userspace-fast counting
// semaphore. The Chase-Lev deque (deque), the task record and the steal
// bus's semaphore route their shared-memory traffic through these
// wrappers; the MPMC ring (queue) uses go.uber.org/atomic directly.
package atomics

import "go.uber.org/atomic"

// Order names the memory ordering requested for a load or store. Go's
// runtime gives every atomic operation acquire/release/seq-cst semantics
// already; Order exists so callers can document intent at each call site,
// without pretending Go offers a relaxed mode.
type Order int

const (
	Relaxed Order = iota
	Acquire
	Release
	SeqCst
)

// Int32 is a 4-byte-aligned atomic signed 32-bit word.
type Int32 struct {
	v atomic.Int32
}

func (a *Int32) Load(Order) int32  { return a.v.Load() }
func (a *Int32) Store(val int32, _ Order) { a.v.Store(val) }

// FetchAdd adds delta and returns the value prior to the add, with
// sequentially-consistent acquire-release semantics.
func (a *Int32) FetchAdd(delta int32) int32 { return a.v.Add(delta) - delta }

// CAS compares against expected and, on match, stores desired. It returns
// the word's value after the attempt (desired on success, the value loaded
// after the failed compare on failure) and whether the swap succeeded, so
// callers can retry from the returned value.
func (a *Int32) CAS(expected, desired int32, _, _ Order) (int32, bool) {
	if a.v.CompareAndSwap(expected, desired) {
		return desired, true
	}
	return a.v.Load(), false
}

// Int64 is an 8-byte-aligned atomic signed 64-bit word.
type Int64 struct {
	v atomic.Int64
}

func (a *Int64) Load(Order) int64          { return a.v.Load() }
func (a *Int64) Store(val int64, _ Order)  { a.v.Store(val) }
func (a *Int64) FetchAdd(delta int64) int64 { return a.v.Add(delta) - delta }

func (a *Int64) CAS(expected, desired int64, _, _ Order) (int64, bool) {
	if a.v.CompareAndSwap(expected, desired) {
		return desired, true
	}
	return a.v.Load(), false
}

// Uint32 is a 4-byte-aligned atomic unsigned 32-bit word.
type Uint32 struct {
	v atomic.Uint32
}

func (a *Uint32) Load(Order) uint32         { return a.v.Load() }
func (a *Uint32) Store(val uint32, _ Order) { a.v.Store(val) }

func (a *Uint32) CAS(expected, desired uint32, _, _ Order) (uint32, bool) {
	if a.v.CompareAndSwap(expected, desired) {
		return desired, true
	}
	return a.v.Load(), false
}

// Uint64 is an 8-byte-aligned atomic unsigned 64-bit word, used for the
// Chase-Lev deque's private/public cursors.
type Uint64 struct {
	v atomic.Uint64
}

func (a *Uint64) Load(Order) uint64         { return a.v.Load() }
func (a *Uint64) Store(val uint64, _ Order) { a.v.Store(val) }

func (a *Uint64) CAS(expected, desired uint64, _, _ Order) (uint64, bool) {
	if a.v.CompareAndSwap(expected, desired) {
		return desired, true
	}
	return a.v.Load(), false
}
