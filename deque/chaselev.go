// Package deque implements a bounded SPMC Chase-Lev work-stealing deque:
// one owner thread pushes and takes LIFO, any thread may steal FIFO.
// Capacity is fixed (no grow), since the owning pool's free-queue
// capacity bounds how many items can ever be live at once.
package deque

import "github.com/go-foundations/taskcore/atomics"

// Deque is a fixed-capacity, power-of-two Chase-Lev deque of task IDs
// (represented as uint32 to avoid an import cycle with the root package,
// which defines the TaskID type as uint32).
type Deque struct {
	private atomics.Uint64 // owner-only cursor
	public  atomics.Uint64 // stealer-raced cursor
	mask    uint64
	storage []uint32
}

// New creates a deque of the given capacity, which must be a power of two.
func New(capacity int) *Deque {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("deque: capacity must be a positive power of two")
	}
	return &Deque{
		mask:    uint64(capacity - 1),
		storage: make([]uint32, capacity),
	}
}

// Push appends id to the bottom. Owner-only. Never fails: the caller's
// pool sizing guarantees push count never exceeds capacity between drains.
func (d *Deque) Push(id uint32) {
	priv := d.private.Load(atomics.Relaxed)
	d.storage[priv&d.mask] = id
	d.private.Store(priv+1, atomics.Relaxed)
}

// Take removes and returns an item from the bottom. Owner-only.
// moreItems reports whether further items remain after this take.
func (d *Deque) Take() (id uint32, moreItems bool, ok bool) {
	priv := d.private.Load(atomics.SeqCst) - 1
	d.private.Store(priv, atomics.SeqCst)

	pub := d.public.Load(atomics.Acquire)

	if int64(pub) > int64(priv) {
		// Deque was already empty; restore.
		d.private.Store(pub, atomics.SeqCst)
		return 0, false, false
	}

	val := d.storage[priv&d.mask]
	if pub < priv {
		return val, true, true
	}

	// Exactly one item left: race a stealer for it.
	if _, won := d.public.CAS(pub, pub+1, atomics.SeqCst, atomics.SeqCst); !won {
		d.private.Store(pub+1, atomics.SeqCst)
		return 0, false, false
	}
	d.private.Store(pub+1, atomics.SeqCst)
	return val, false, true
}

// Steal removes and returns an item from the top. Any thread may call
// this. A false return with ok=false is a normal transient outcome (lost
// race or empty), not an error.
func (d *Deque) Steal() (id uint32, moreItems bool, ok bool) {
	pub := d.public.Load(atomics.Acquire)
	priv := d.private.Load(atomics.Relaxed)

	if int64(pub) >= int64(priv) {
		return 0, false, false
	}

	val := d.storage[pub&d.mask]
	if _, won := d.public.CAS(pub, pub+1, atomics.Release, atomics.Relaxed); !won {
		return 0, false, false
	}
	return val, pub+1 < priv, true
}

// Len returns an approximate occupancy.
func (d *Deque) Len() int {
	priv := d.private.Load(atomics.Relaxed)
	pub := d.public.Load(atomics.Relaxed)
	if pub > priv {
		return 0
	}
	return int(priv - pub)
}

// IsEmpty reports whether the deque currently appears empty.
func (d *Deque) IsEmpty() bool { return d.Len() == 0 }

// Cap returns the deque's fixed capacity.
func (d *Deque) Cap() int { return len(d.storage) }
