package taskcore

import (
	"sync"
	"unsafe"

	"github.com/go-foundations/taskcore/atomics"
	"github.com/go-foundations/taskcore/buddy"
	"github.com/go-foundations/taskcore/deque"
	"github.com/go-foundations/taskcore/queue"
)

// Storage is the process-wide owner of every task pool: a flat array of
// pools ordered first by pool-type then by per-type index, one free list
// per pool-type, and the shared steal bus.
type Storage struct {
	pools []Pool

	typeConfig map[uint32]PoolTypeConfig
	typeOrder  []uint32

	freeListMu   map[uint32]*sync.Mutex
	freeListHead map[uint32]*Pool

	stealBus *queue.StealBus
	logger   Logger

	arena *buddy.Allocator
}

// poolRecordBytes is an accounting-only estimate of per-task-record
// overhead used by QueryStorageSize; it does not reflect an unsafe byte
// layout taskcore actually carves memory into (see DESIGN.md: typed Go
// slices back every pool, not raw pointer arithmetic over caller memory).
const poolRecordBytes = unsafe.Sizeof(TaskRecord{})

// QueryStorageSize computes the number of bytes a NewStorage call with
// this configuration would need.
func QueryStorageSize(types []PoolTypeConfig) (uintptr, error) {
	result := ValidatePoolConfig(types)
	if !result.OK() {
		return 0, ErrInvalidConfig
	}

	var total uintptr
	for _, t := range types {
		perPool := uintptr(t.MaxActiveTasks)*poolRecordBytes +
			uintptr(t.MaxActiveTasks)*4 /* free queue slots */ +
			uintptr(t.MaxActiveTasks)*4 /* ready deque slots */ +
			uintptr(t.MaxActiveTasks)*4 /* inbox slots */
		total += perPool * uintptr(t.PoolCount)
	}
	return total, nil
}

// NewStorage validates the configuration, checks the supplied memory
// block is large enough (carving a single accounting block from it via
// the buddy allocator to enforce a fixed pre-reserved region with
// power-of-two sizes), and builds every pool up front. Pools
// are created here and never destroyed until DeleteStorage; callers only
// ever Acquire/Release them afterward.
func NewStorage(types []PoolTypeConfig, memory []byte, logger Logger) (*Storage, error) {
	result := ValidatePoolConfig(types)
	if !result.OK() {
		return nil, ErrInvalidConfig
	}

	needed, err := QueryStorageSize(types)
	if err != nil {
		return nil, err
	}
	if uintptr(len(memory)) < needed {
		return nil, ErrInsufficientMemory
	}

	region := nextPow2Uintptr(uintptr(len(memory)))
	arena, err := buddy.New(region, CacheLineSize, region, 0)
	if err != nil {
		return nil, ErrInvalidConfig
	}
	if _, err := arena.Allocate(needed, CacheLineSize); err != nil {
		return nil, ErrInsufficientMemory
	}

	if logger == nil {
		logger = noopLogger{}
	}

	totalPools := 0
	for _, t := range types {
		totalPools += t.PoolCount
	}

	s := &Storage{
		pools:        make([]Pool, totalPools),
		typeConfig:   make(map[uint32]PoolTypeConfig, len(types)),
		typeOrder:    make([]uint32, 0, len(types)),
		freeListMu:   make(map[uint32]*sync.Mutex, len(types)),
		freeListHead: make(map[uint32]*Pool, len(types)),
		stealBus:     queue.NewStealBus(queue.DefaultStealBusCapacity),
		logger:       logger,
		arena:        arena,
	}

	idx := uint32(0)
	for _, t := range types {
		s.typeConfig[t.ID] = t
		s.typeOrder = append(s.typeOrder, t.ID)
		s.freeListMu[t.ID] = &sync.Mutex{}

		var head *Pool
		for i := 0; i < t.PoolCount; i++ {
			p := newPool(s, idx, t.ID, t.MaxActiveTasks, t.StealThreshold)
			s.pools[idx] = *p
			pp := &s.pools[idx]
			pp.freeListNext = head
			head = pp
			idx++
		}
		s.freeListHead[t.ID] = head
	}

	return s, nil
}

// DeleteStorage releases the storage's own resources. The steal bus's
// semaphore has no OS handle to leak in this implementation (it rides
// atop golang.org/x/sync/semaphore.Weighted, which is pure Go state), but
// DeleteStorage is kept as an explicit, idempotent teardown entrypoint
// callers can rely on regardless of backing implementation.
func (s *Storage) DeleteStorage() {
	s.stealBus = nil
}

// Acquire binds a free pool of the given type to the caller, resetting
// its free queue, ready deque and inbox to empty. It returns
// ErrNoPoolAvailable if every pool of that type is already bound.
func (s *Storage) Acquire(poolTypeID uint32) (*Pool, error) {
	mu, ok := s.freeListMu[poolTypeID]
	if !ok {
		return nil, ErrInvalidConfig
	}

	mu.Lock()
	head := s.freeListHead[poolTypeID]
	if head == nil {
		mu.Unlock()
		return nil, ErrNoPoolAvailable
	}
	s.freeListHead[poolTypeID] = head.freeListNext
	mu.Unlock()

	head.freeListNext = nil
	head.resetFreeQueue()
	head.ready = deque.New(head.capacity)
	head.inbox = queue.NewRing[uint32](head.capacity)
	head.readyCount.Store(0, atomics.Release)
	head.published.Store(0, atomics.Release)
	head.backpressure = atomics.NewFastSemaphore(int32(head.capacity))

	return head, nil
}

// Release returns pool to its type's free list. The pool must be empty
// (no live tasks); this is a precondition, not enforced by Release itself.
func (s *Storage) Release(pool *Pool) {
	mu := s.freeListMu[pool.typeID]
	mu.Lock()
	pool.freeListNext = s.freeListHead[pool.typeID]
	s.freeListHead[pool.typeID] = pool
	mu.Unlock()
}

// recordFor resolves a TaskID to its owning pool and record.
func (s *Storage) recordFor(id TaskID) (*Pool, *TaskRecord, bool) {
	if !id.Valid() {
		return nil, nil, false
	}
	idx := id.PoolIndex()
	if int(idx) >= len(s.pools) {
		return nil, nil, false
	}
	p := &s.pools[idx]
	slot := id.SlotIndex()
	if int(slot) >= len(p.records) {
		return nil, nil, false
	}
	return p, &p.records[slot], true
}

// RunWorker runs p's main scheduling loop: drain the inbox, drain the
// local deque LIFO, and otherwise block on the shared steal bus for a
// notification before stealing FIFO from the indicated victim pool. It
// returns only when done is closed, and it checks done only between tasks
// and after each steal-bus wake: a worker blocked in the steal bus does not
// observe a closed done until some pool posts a notification.
func (s *Storage) RunWorker(p *Pool, done <-chan struct{}) {
	const spinCount = 64
	for {
		select {
		case <-done:
			return
		default:
		}

		if id, ok := p.Take(); ok {
			s.execute(p, id)
			continue
		}

		victimIdx := s.stealBus.Take(spinCount)
		select {
		case <-done:
			return
		default:
		}
		if int(victimIdx) >= len(s.pools) {
			continue
		}
		victim := &s.pools[victimIdx]
		if id, ok := victim.Steal(); ok {
			s.execute(victim, id)
		}
	}
}

// execute runs a claimed task's entry point exactly once, then completes
// it exactly once.
func (s *Storage) execute(owner *Pool, id TaskID) {
	rec := &owner.records[id.SlotIndex()]
	if rec.Entry != nil {
		rec.Entry(id, &rec.LocalData)
	}
	s.Complete(owner, id)
}

func nextPow2Uintptr(v uintptr) uintptr {
	if v == 0 {
		return 1
	}
	p := uintptr(1)
	for p < v {
		p <<= 1
	}
	return p
}
