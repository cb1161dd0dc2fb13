package dispatch

import "sort"

// assignRoundRobin assigns jobs to pools in simple round-robin order,
// the default distribution when no further structure is known about the
// workload.
func assignRoundRobin[T any](jobs []Job[T], numPools int) []assignment[T] {
	out := make([]assignment[T], len(jobs))
	for i, j := range jobs {
		out[i] = assignment[T]{job: j, poolIndex: i % numPools}
	}
	return out
}

// assignChunked splits jobs into numPools contiguous runs, one per pool,
// trading load balance for locality: jobs submitted near each other in
// time tend to touch related data and end up on the same pool.
func assignChunked[T any](jobs []Job[T], numPools int) []assignment[T] {
	out := make([]assignment[T], len(jobs))
	chunkSize := len(jobs) / numPools
	if chunkSize == 0 {
		chunkSize = 1
	}
	remainder := len(jobs) % numPools

	start := 0
	for p := 0; p < numPools && start < len(jobs); p++ {
		end := start + chunkSize
		if p < remainder {
			end++
		}
		if end > len(jobs) {
			end = len(jobs)
		}
		for i := start; i < end; i++ {
			out[i] = assignment[T]{job: jobs[i], poolIndex: p}
		}
		start = end
	}
	return out
}

// assignPriority orders jobs by descending Priority (stable on Created,
// oldest first, to avoid starving equal-priority jobs) before handing
// them out round-robin, so high-priority work lands across every pool
// instead of piling onto just one.
func assignPriority[T any](jobs []Job[T], numPools int) []assignment[T] {
	ordered := make([]Job[T], len(jobs))
	copy(ordered, jobs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].Created.Before(ordered[j].Created)
	})
	return assignRoundRobin(ordered, numPools)
}

// assignAdaptive deliberately front-loads pool 0 with every job, relying
// on taskcore's own steal bus to redistribute the surplus across the
// other pools once they notice pool 0 crossed its steal threshold. This
// is the one strategy that exercises stealing rather than working around
// it: a workload whose size is unknown ahead of time gets balanced by the
// scheduler itself instead of by a pre-computed assignment.
func assignAdaptive[T any](jobs []Job[T], numPools int) []assignment[T] {
	out := make([]assignment[T], len(jobs))
	for i, j := range jobs {
		out[i] = assignment[T]{job: j, poolIndex: 0}
	}
	_ = numPools
	return out
}
