package taskcore

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (ts *ConfigTestSuite) validConfig() []PoolTypeConfig {
	return []PoolTypeConfig{
		{ID: WorkerPoolType, PoolCount: 2, StealThreshold: 4, MaxActiveTasks: 256},
	}
}

func (ts *ConfigTestSuite) TestValidConfigPasses() {
	result := ValidatePoolConfig(ts.validConfig())
	ts.True(result.OK())
	ts.Equal(Success, result.Global)
}

func (ts *ConfigTestSuite) TestMissingWorkerTypeFails() {
	types := []PoolTypeConfig{
		{ID: MainPoolType, PoolCount: 1, StealThreshold: 1, MaxActiveTasks: 16},
	}
	result := ValidatePoolConfig(types)
	ts.Equal(NoWorkerID, result.Global)
}

func (ts *ConfigTestSuite) TestDuplicateIDFails() {
	types := []PoolTypeConfig{
		{ID: WorkerPoolType, PoolCount: 1, StealThreshold: 1, MaxActiveTasks: 16},
		{ID: WorkerPoolType, PoolCount: 1, StealThreshold: 1, MaxActiveTasks: 16},
	}
	result := ValidatePoolConfig(types)
	ts.Equal(DuplicateID, result.Global)
}

func (ts *ConfigTestSuite) TestNotPowerOfTwoFails() {
	types := []PoolTypeConfig{
		{ID: WorkerPoolType, PoolCount: 1, StealThreshold: 1, MaxActiveTasks: 100},
	}
	result := ValidatePoolConfig(types)
	ts.Equal(NotPowerOfTwo, result.Global)
}

func (ts *ConfigTestSuite) TestStealThresholdOutOfRangeFails() {
	types := []PoolTypeConfig{
		{ID: WorkerPoolType, PoolCount: 1, StealThreshold: 256, MaxActiveTasks: 256},
	}
	result := ValidatePoolConfig(types)
	ts.Equal(InvalidUsage, result.Global)
}

func (ts *ConfigTestSuite) TestTooManyPoolsFails() {
	types := []PoolTypeConfig{
		{ID: WorkerPoolType, PoolCount: MaxTaskPools + 1, StealThreshold: 1, MaxActiveTasks: 16},
	}
	result := ValidatePoolConfig(types)
	ts.Equal(TooManyPools, result.Global)
}

func (ts *ConfigTestSuite) TestPerTypeCodesAreReported() {
	types := []PoolTypeConfig{
		{ID: WorkerPoolType, PoolCount: 1, StealThreshold: 1, MaxActiveTasks: 16},
		{ID: MainPoolType, PoolCount: 0, StealThreshold: 1, MaxActiveTasks: 16},
	}
	result := ValidatePoolConfig(types)
	ts.Require().Len(result.PerType, 2)
	ts.Equal(Success, result.PerType[0])
	ts.Equal(TooFewTasks, result.PerType[1])
}
