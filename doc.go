// Package taskcore provides a fixed-capacity, lock-free, multi-producer
// work-stealing task scheduler: per-thread task pools with parent/child
// relationships and permit-based dependencies, bound together by a
// process-wide steal bus that wakes idle workers when a pool has ready
// work.
//
// The scheduler is cooperative: a running task runs to its completion
// call, there is no preemption, and no cancellation or timeout support is
// provided. Callers define tasks into a pool bound to their own OS
// thread, launch them, and either let a worker steal them or take them
// from their own pool directly.
package taskcore
