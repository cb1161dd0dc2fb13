package taskcore

import (
	"github.com/go-foundations/taskcore/atomics"
)

// EntryPoint is a task's main body. It receives the task's own ID and a
// pointer to its local argument buffer (the first argSize bytes of which
// were populated at Define time).
type EntryPoint func(id TaskID, args *[MaxTaskDataBytes]byte)

// TaskRecord is the fixed, cacheline-aligned-in-spirit record backing a
// single task slot. WaitCount, WorkCount, and PermitCount are atomically
// mutated by definition, launch, stealing, and completion across
// threads; ParentID, Entry and LocalData are written once by the
// defining thread and read-only thereafter until the slot is recycled.
type TaskRecord struct {
	WaitCount   atomics.Int32
	WorkCount   atomics.Int32
	PermitCount atomics.Int32
	ParentID    TaskID
	Entry       EntryPoint
	LocalData   [MaxTaskDataBytes]byte
	Permits     [MaxTaskPermits]TaskID
}

// DefineInit carries the parameters of a Define call.
type DefineInit struct {
	Entry        EntryPoint
	Args         []byte
	Dependencies []TaskID
	Parent       TaskID // InvalidTaskID when the task is a root
}

// permitAppendResult distinguishes why appending to a dependency's
// permit list did or did not happen.
type permitAppendResult int

const (
	permitAppended permitAppendResult = iota
	permitAlreadyComplete
	permitListFull
)

// tryAddPermit attempts to atomically append permittee to rec's permit
// list. It fails closed: once PermitCount is latched to -1 (rec has
// completed and propagated its permits already), or once the list is at
// MaxTaskPermits capacity, the caller must treat the dependency as
// already resolved or as a hard TooManyDependencies failure respectively.
func tryAddPermit(rec *TaskRecord, permittee TaskID) permitAppendResult {
	for {
		cur := rec.PermitCount.Load(atomics.Acquire)
		if cur < 0 {
			return permitAlreadyComplete
		}
		if cur >= MaxTaskPermits {
			return permitListFull
		}
		if _, ok := rec.PermitCount.CAS(cur, cur+1, atomics.Release, atomics.Acquire); ok {
			rec.Permits[cur] = permittee
			return permitAppended
		}
	}
}

// Define allocates a task slot from p's free queue, initializes the
// record, attaches it to its dependencies' permit lists, and either
// pushes it onto p's ready deque (if it has no outstanding dependencies)
// or leaves it waiting.
func (s *Storage) Define(p *Pool, init DefineInit) (TaskID, error) {
	if len(init.Args) > MaxTaskDataBytes {
		return InvalidTaskID, ErrArgsTooLarge
	}
	if len(init.Dependencies) > MaxTaskPermits {
		return InvalidTaskID, ErrTooManyDependencies
	}

	// Pre-scan dependencies for obvious capacity failures before
	// allocating a slot, so a TooManyDependencies failure never leaves a
	// half-initialized task reachable from another task's permit list.
	// This is a best-effort check under concurrency (see DESIGN.md); the
	// atomic append loop below is authoritative.
	for _, dep := range init.Dependencies {
		if _, rec, ok := s.recordFor(dep); ok {
			if rec.PermitCount.Load(atomics.Acquire) >= MaxTaskPermits {
				return InvalidTaskID, ErrTooManyDependencies
			}
		}
	}

	if init.Parent.Valid() {
		if _, parentRec, ok := s.recordFor(init.Parent); ok {
			if parentRec.WorkCount.Load(atomics.Acquire) <= 0 {
				return InvalidTaskID, ErrParentCompleted
			}
		}
	}

	slot, ok := p.freeQueue.Take()
	if !ok {
		return InvalidTaskID, ErrPoolFull
	}

	id := MakeTaskID(p.index, slot, false)
	rec := &p.records[slot]
	rec.Entry = init.Entry
	rec.ParentID = init.Parent
	var n int
	n = copy(rec.LocalData[:], init.Args)
	for i := n; i < MaxTaskDataBytes; i++ {
		rec.LocalData[i] = 0
	}
	rec.WorkCount.Store(2, atomics.Release)
	rec.PermitCount.Store(0, atomics.Release)
	rec.WaitCount.Store(int32(1+len(init.Dependencies)), atomics.Release)

	resolved := 0
	for _, dep := range init.Dependencies {
		_, depRec, found := s.recordFor(dep)
		if !found {
			resolved++
			continue
		}
		switch tryAddPermit(depRec, id) {
		case permitAppended:
			// stays waiting on dep
		case permitAlreadyComplete:
			resolved++
		case permitListFull:
			s.logger.Error("dependency permit list full, treating as resolved", "dep", dep, "task", id)
			resolved++
		}
	}

	if init.Parent.Valid() {
		if _, parentRec, ok := s.recordFor(init.Parent); ok {
			parentRec.WorkCount.FetchAdd(1)
		}
	}

	remaining := rec.WaitCount.FetchAdd(int32(-(1 + resolved))) - int32(1+resolved)
	if remaining <= 0 {
		p.pushReady(id)
	}

	return id, nil
}

// Launch decrements the launched task's work_count by one. Launch is
// mandatory: an unlaunched task can never reach Complete's work_count==0
// branch, since one of its two initial work units represents "launch
// outstanding".
func (s *Storage) Launch(p *Pool, id TaskID) {
	rec := &p.records[id.SlotIndex()]
	if rec.WorkCount.FetchAdd(-1)-1 <= 0 {
		s.Complete(p, id)
	}
}

// Complete runs the completion algorithm: decrement work_count, and if
// it has reached zero, latch permit_count, ready every permitted task
// whose wait_count reaches zero, cascade into the parent, and return the
// slot to the free queue.
func (s *Storage) Complete(ownerPool *Pool, id TaskID) {
	rec := &ownerPool.records[id.SlotIndex()]
	if rec.WorkCount.FetchAdd(-1)-1 > 0 {
		return
	}

	// Latch permit_count to -1, racing any in-flight tryAddPermit so
	// that once the latch lands, no further permit is appended.
	var prevPermits int32
	for {
		cur := rec.PermitCount.Load(atomics.Acquire)
		if cur < 0 {
			prevPermits = 0
			break
		}
		if _, ok := rec.PermitCount.CAS(cur, -1, atomics.Release, atomics.Acquire); ok {
			prevPermits = cur
			break
		}
	}

	for i := int32(0); i < prevPermits; i++ {
		permittee := rec.Permits[i]
		targetPool, targetRec, ok := ownerPool.storage.recordFor(permittee)
		if !ok {
			continue
		}
		if targetRec.WaitCount.FetchAdd(-1)-1 == 0 {
			targetPool.postReady(permittee)
		}
	}

	parent := rec.ParentID
	ownerPool.freeQueue.Push(id.SlotIndex())
	ownerPool.backpressure.Post()

	if parent.Valid() {
		if parentPool, _, ok := ownerPool.storage.recordFor(parent); ok {
			ownerPool.storage.Complete(parentPool, parent)
		}
	}
}
