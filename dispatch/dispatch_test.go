package dispatch

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DispatchTestSuite struct {
	suite.Suite
}

func TestDispatchTestSuite(t *testing.T) {
	suite.Run(t, new(DispatchTestSuite))
}

func upperProcessor(ctx context.Context, job Job[string]) (string, error) {
	return strings.ToUpper(job.Data), nil
}

func (ts *DispatchTestSuite) jobs(n int) []Job[string] {
	jobs := make([]Job[string], n)
	for i := 0; i < n; i++ {
		jobs[i] = Job[string]{ID: fmt.Sprintf("job_%d", i), Data: fmt.Sprintf("data_%d", i), Priority: i % 3}
	}
	return jobs
}

func (ts *DispatchTestSuite) TestNewUsesDefaultConfig() {
	r := New[string, string]()
	ts.Equal(4, r.config.NumPools)
	ts.Equal(RoundRobin, r.config.Strategy)
}

func (ts *DispatchTestSuite) TestRunWithoutProcessorFails() {
	r := New[string, string]().AddJobs(ts.jobs(1))
	_, err := r.Run(context.Background())
	ts.Error(err)
}

func (ts *DispatchTestSuite) TestRunWithoutJobsFails() {
	r := New[string, string]().WithProcessor(upperProcessor)
	_, err := r.Run(context.Background())
	ts.Error(err)
}

func (ts *DispatchTestSuite) TestRunRoundRobinProcessesEveryJob() {
	ts.runAndCheck(RoundRobin)
}

func (ts *DispatchTestSuite) TestRunChunkedProcessesEveryJob() {
	ts.runAndCheck(Chunked)
}

func (ts *DispatchTestSuite) TestRunPriorityBasedProcessesEveryJob() {
	ts.runAndCheck(PriorityBased)
}

func (ts *DispatchTestSuite) TestRunAdaptiveProcessesEveryJob() {
	ts.runAndCheck(Adaptive)
}

func (ts *DispatchTestSuite) runAndCheck(strategy DistributionStrategy) {
	config := Config{NumPools: 3, PoolCapacity: 64, Strategy: strategy}
	jobs := ts.jobs(20)

	r := NewWithConfig[string, string](config).
		WithProcessor(upperProcessor).
		AddJobs(jobs)

	results, err := r.Run(context.Background())
	ts.Require().NoError(err)
	ts.Len(results, len(jobs))

	seen := make(map[string]bool, len(jobs))
	for _, res := range results {
		ts.Require().NoError(res.Error)
		wantData := strings.ToUpper(strings.Replace(res.JobID, "job_", "data_", 1))
		ts.Equal(wantData, res.Data)
		seen[res.JobID] = true
	}
	ts.Len(seen, len(jobs))
}

func (ts *DispatchTestSuite) TestPriorityOrderingPrefersHigherPriority() {
	jobs := []Job[string]{
		{ID: "low", Data: "low", Priority: 0},
		{ID: "high", Data: "high", Priority: 9},
	}
	assigned := assignPriority(jobs, 2)
	ts.Equal("high", assigned[0].job.ID)
	ts.Equal("low", assigned[1].job.ID)
}

func (ts *DispatchTestSuite) TestChunkedAssignsContiguousRuns() {
	jobs := ts.jobs(9)
	assigned := assignChunked(jobs, 3)
	ts.Equal(0, assigned[0].poolIndex)
	ts.Equal(0, assigned[2].poolIndex)
	ts.Equal(1, assigned[3].poolIndex)
	ts.Equal(2, assigned[8].poolIndex)
}
