// Package dispatch is a generic batch-submission facade over taskcore:
// callers submit typed jobs and collect typed results without touching
// TaskID, DefineInit, or Pool directly. It offers a
// Job[T]/Result[R]/Processor[T,R] generic shape and four distribution
// strategies (round robin, chunked, priority based, adaptive); the actual
// concurrent execution, readiness tracking and stealing are done entirely
// by taskcore's scheduler rather than by per-strategy goroutines and
// channels.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-foundations/taskcore"
)

// Job represents a unit of work to be processed.
type Job[T any] struct {
	ID       string
	Data     T
	Priority int
	Created  time.Time
}

// Result wraps the processing result of a job.
type Result[R any] struct {
	JobID     string
	Data      R
	Error     error
	Worker    int
	Started   time.Time
	Completed time.Time
	Duration  time.Duration
}

// Processor defines how to process a job.
type Processor[T any, R any] func(ctx context.Context, job Job[T]) (R, error)

// DistributionStrategy defines how jobs are assigned to pools before the
// scheduler takes over. Once assigned, every pool runs through the same
// taskcore worker loop and is equally subject to stealing.
type DistributionStrategy int

const (
	RoundRobin DistributionStrategy = iota
	Chunked
	PriorityBased
	Adaptive
)

func (s DistributionStrategy) String() string {
	switch s {
	case RoundRobin:
		return "Round Robin"
	case Chunked:
		return "Chunked"
	case PriorityBased:
		return "Priority Based"
	case Adaptive:
		return "Adaptive"
	default:
		return "Unknown"
	}
}

// Config holds configuration for a Runner.
type Config struct {
	NumPools     int // number of worker-type pools to acquire
	PoolCapacity int // per-pool task capacity, must be a power of two
	Strategy     DistributionStrategy
	MaxRetries   int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		NumPools:     4,
		PoolCapacity: 1024,
		Strategy:     RoundRobin,
		MaxRetries:   0,
	}
}

// Metrics holds aggregate performance metrics for a Runner's last Run.
type Metrics struct {
	TotalJobs       int
	ProcessedJobs   int
	FailedJobs      int
	TotalDuration   time.Duration
	AverageDuration time.Duration
	StartTime       time.Time
	EndTime         time.Time
}

// Runner manages batch submission of jobs against a dedicated taskcore
// storage instance, collecting one Result per Job.
type Runner[T any, R any] struct {
	config    Config
	processor Processor[T, R]
	jobs      []Job[T]
	metrics   Metrics
	mu        sync.Mutex
}

// New creates a Runner with default configuration.
func New[T any, R any]() *Runner[T, R] {
	return NewWithConfig[T, R](DefaultConfig())
}

// NewWithConfig creates a Runner with custom configuration.
func NewWithConfig[T any, R any](config Config) *Runner[T, R] {
	if config.NumPools <= 0 {
		config.NumPools = 1
	}
	if config.PoolCapacity <= 0 || config.PoolCapacity&(config.PoolCapacity-1) != 0 {
		config.PoolCapacity = 1024
	}
	return &Runner[T, R]{config: config}
}

// WithProcessor sets the processing function.
func (r *Runner[T, R]) WithProcessor(p Processor[T, R]) *Runner[T, R] {
	r.processor = p
	return r
}

// AddJobs replaces the runner's job list.
func (r *Runner[T, R]) AddJobs(jobs []Job[T]) *Runner[T, R] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs = make([]Job[T], len(jobs))
	copy(r.jobs, jobs)

	now := timeNow()
	for i := range r.jobs {
		if r.jobs[i].Created.IsZero() {
			r.jobs[i].Created = now
		}
	}
	r.metrics.TotalJobs = len(r.jobs)
	return r
}

// AddJob appends a single job.
func (r *Runner[T, R]) AddJob(job Job[T]) *Runner[T, R] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job.Created.IsZero() {
		job.Created = timeNow()
	}
	r.jobs = append(r.jobs, job)
	r.metrics.TotalJobs = len(r.jobs)
	return r
}

// timeNow is split out purely so dispatch has one place that calls
// time.Now, matching the rest of taskcore's avoidance of direct clock
// reads outside of metrics bookkeeping.
func timeNow() time.Time { return time.Now() }

// assignment pairs a job with the pool index it should be defined into.
type assignment[T any] struct {
	job       Job[T]
	poolIndex int
}

// Run executes every added job through a fresh taskcore.Storage sized for
// this runner's configuration, using the configured distribution
// strategy to choose each job's starting pool, then returns one Result
// per Job (order not guaranteed to match submission order).
func (r *Runner[T, R]) Run(ctx context.Context) ([]Result[R], error) {
	r.mu.Lock()
	jobs := make([]Job[T], len(r.jobs))
	copy(jobs, r.jobs)
	processor := r.processor
	config := r.config
	r.mu.Unlock()

	if processor == nil {
		return nil, fmt.Errorf("dispatch: no processor configured")
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("dispatch: no jobs to process")
	}

	numPools := config.NumPools
	if config.Strategy == Adaptive {
		info := taskcore.QueryCPUInfo()
		if info.LogicalCores > 0 {
			numPools = info.LogicalCores
		}
	}

	storage, err := taskcore.NewStorage(
		[]taskcore.PoolTypeConfig{{
			ID:             taskcore.WorkerPoolType,
			PoolCount:      numPools,
			StealThreshold: 1,
			MaxActiveTasks: config.PoolCapacity,
		}},
		make([]byte, requiredBytes(numPools, config.PoolCapacity)),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("dispatch: storage init: %w", err)
	}

	pools := make([]*taskcore.Pool, numPools)
	for i := 0; i < numPools; i++ {
		p, err := storage.Acquire(taskcore.WorkerPoolType)
		if err != nil {
			return nil, fmt.Errorf("dispatch: acquiring pool %d: %w", i, err)
		}
		pools[i] = p
	}

	var assignments []assignment[T]
	switch config.Strategy {
	case Chunked:
		assignments = assignChunked(jobs, numPools)
	case PriorityBased:
		assignments = assignPriority(jobs, numPools)
	case Adaptive:
		assignments = assignAdaptive(jobs, numPools)
	default:
		assignments = assignRoundRobin(jobs, numPools)
	}

	results := make([]Result[R], len(jobs))
	var wg sync.WaitGroup
	wg.Add(len(assignments))

	start := timeNow()
	for i, a := range assignments {
		i, a := i, a
		pool := pools[a.poolIndex]
		id, err := storage.Define(pool, taskcore.DefineInit{
			Entry: func(taskcore.TaskID, *[taskcore.MaxTaskDataBytes]byte) {
				results[i] = runOne(ctx, a.job, processor, a.poolIndex, config.MaxRetries)
				wg.Done()
			},
			Parent: taskcore.InvalidTaskID,
		})
		if err != nil {
			results[i] = Result[R]{JobID: a.job.ID, Error: fmt.Errorf("dispatch: define: %w", err)}
			wg.Done()
			continue
		}
		storage.Launch(pool, id)
	}

	done := make(chan struct{})
	for _, p := range pools {
		go storage.RunWorker(p, done)
	}

	wg.Wait()
	close(done)

	r.mu.Lock()
	r.metrics.StartTime = start
	r.metrics.EndTime = timeNow()
	r.metrics.TotalDuration = r.metrics.EndTime.Sub(start)
	r.metrics.ProcessedJobs = 0
	r.metrics.FailedJobs = 0
	for _, res := range results {
		if res.Error != nil {
			r.metrics.FailedJobs++
		} else {
			r.metrics.ProcessedJobs++
		}
	}
	if r.metrics.ProcessedJobs > 0 {
		r.metrics.AverageDuration = r.metrics.TotalDuration / time.Duration(r.metrics.ProcessedJobs)
	}
	r.mu.Unlock()

	return results, nil
}

// runOne processes a single job, retrying up to maxRetries times and
// recording per-job timing into the returned Result.
func runOne[T any, R any](ctx context.Context, job Job[T], processor Processor[T, R], worker, maxRetries int) Result[R] {
	started := timeNow()
	var data R
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
		default:
			data, err = processor(ctx, job)
		}
		if err == nil {
			break
		}
		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
		}
	}

	completed := timeNow()
	return Result[R]{
		JobID:     job.ID,
		Data:      data,
		Error:     err,
		Worker:    worker,
		Started:   started,
		Completed: completed,
		Duration:  completed.Sub(started),
	}
}

// requiredBytes estimates the memory block NewStorage needs; dispatch
// pads generously since its own accounting (closures, not LocalData) is
// lighter than taskcore.QueryStorageSize assumes.
func requiredBytes(numPools, capacity int) int {
	return numPools*capacity*160 + 4096
}

// Metrics returns a copy of the runner's most recent Run metrics.
func (r *Runner[T, R]) Metrics() Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics
}
