package taskcore

import (
	"github.com/go-foundations/taskcore/atomics"
	"github.com/go-foundations/taskcore/deque"
	"github.com/go-foundations/taskcore/queue"
)

// Pool is a cacheline-aligned-in-spirit, owner-bound container of task
// records: a free queue of available slots, a ready-to-run deque, a
// back-pressure semaphore, and an inbox other threads use to hand it
// freshly-readied tasks (the cross-pool completion path).
type Pool struct {
	storage *Storage

	index    uint32
	typeID   uint32
	capacity int

	ownerOSID uint64

	records      []TaskRecord
	freeQueue    *queue.Ring[uint32]
	ready        *deque.Deque
	inbox        *queue.Ring[uint32]
	backpressure *atomics.FastSemaphore

	readyCount     atomics.Int32
	published      atomics.Int32
	stealThreshold int

	lastError error

	freeListNext *Pool // singly-linked free-list membership, guarded by Storage's type mutex
}

// newPool allocates a pool's runtime storage for the given capacity
// (a power of two) and steal threshold.
func newPool(storage *Storage, index, typeID uint32, capacity, stealThreshold int) *Pool {
	p := &Pool{
		storage:        storage,
		index:          index,
		typeID:         typeID,
		capacity:       capacity,
		records:        make([]TaskRecord, capacity),
		freeQueue:      queue.NewRing[uint32](capacity),
		ready:          deque.New(capacity),
		inbox:          queue.NewRing[uint32](capacity),
		backpressure:   atomics.NewFastSemaphore(int32(capacity)),
		stealThreshold: stealThreshold,
	}
	p.resetFreeQueue()
	return p
}

// resetFreeQueue (re)populates the free queue with every slot index, used
// both at construction and whenever a pool is re-acquired by a new owner.
func (p *Pool) resetFreeQueue() {
	for i := 0; i < p.capacity; i++ {
		p.freeQueue.Push(uint32(i))
	}
}

// pushReady pushes id onto the owner's own ready deque. Callers must be
// the pool's owning thread; Define always satisfies this since a thread
// only defines tasks into a pool it has acquired.
func (p *Pool) pushReady(id TaskID) {
	p.ready.Push(uint32(id))
	p.noteReadyAdded()
}

// postReady hands id to the pool from any thread (used by Complete, which
// may run on a worker that does not own this pool). It is always routed
// through the inbox rather than the deque, because the deque's Push is
// owner-only; the owner drains its inbox into the deque before it next
// looks for work. The readiness is counted here, at the moment it becomes
// visible to the system, and noteReadyAdded's own steal-bus notify is what
// wakes a worker that may already be asleep in stealBus.Take with nothing
// else pending to wake it — without this, a pool whose only readiness
// event is a cross-pool permit completion would never be woken.
func (p *Pool) postReady(id TaskID) {
	if !p.inbox.Push(uint32(id)) {
		p.storage.logger.Error("pool inbox saturated, dropping ready notification", "pool", p.index, "task", id)
		return
	}
	p.noteReadyAdded()
}

// drainInbox moves every task currently sitting in the inbox onto the
// owner's ready deque. Owner-only. Each item was already counted by
// postReady when it was posted, so this does not call noteReadyAdded
// again; doing so would double-count occupancy against stealThreshold.
func (p *Pool) drainInbox() {
	for {
		slot, ok := p.inbox.Take()
		if !ok {
			return
		}
		p.ready.Push(slot)
	}
}

// noteReadyAdded bumps the ready count and, if it has just crossed the
// pool-type's steal threshold, posts a single steal-bus notification:
// at most once per wake window, implemented with a published flag
// cleared once the deque drains back below threshold.
func (p *Pool) noteReadyAdded() {
	n := p.readyCount.FetchAdd(1) + 1
	if int(n) > p.stealThreshold {
		if _, ok := p.published.CAS(0, 1, atomics.Release, atomics.Acquire); ok {
			p.storage.stealBus.Notify(p.index)
		}
	}
}

// noteTaken records that one item left the ready deque, clearing the
// published flag once occupancy falls back to or below threshold.
func (p *Pool) noteTaken() {
	n := p.readyCount.FetchAdd(-1) - 1
	if int(n) <= p.stealThreshold {
		p.published.Store(0, atomics.Release)
	}
}

// Take removes a task from the owner's own deque (LIFO), draining the
// inbox first so cross-pool readies are not starved. Owner-only.
func (p *Pool) Take() (TaskID, bool) {
	p.drainInbox()
	id, _, ok := p.ready.Take()
	if !ok {
		return InvalidTaskID, false
	}
	p.noteTaken()
	return TaskID(id), true
}

// Steal removes a task from this pool's deque (FIFO) on behalf of a
// thief thread. A false return is a normal transient outcome.
func (p *Pool) Steal() (TaskID, bool) {
	id, _, ok := p.ready.Steal()
	if !ok {
		return InvalidTaskID, false
	}
	p.noteTaken()
	return TaskID(id), true
}

// Capacity returns the pool's fixed slot count.
func (p *Pool) Capacity() int { return p.capacity }

// Index returns the pool's index within its storage.
func (p *Pool) Index() uint32 { return p.index }

// LastError returns the pool's last-error field. No taskcore operation
// sets it, so it is always nil.
func (p *Pool) LastError() error { return p.lastError }
