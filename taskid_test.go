package taskcore

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type TaskIDTestSuite struct {
	suite.Suite
}

func TestTaskIDTestSuite(t *testing.T) {
	suite.Run(t, new(TaskIDTestSuite))
}

func (ts *TaskIDTestSuite) TestMakeTaskIDRoundTrip() {
	id := MakeTaskID(7, 1234, false)
	ts.True(id.Valid())
	ts.False(id.External())
	ts.Equal(uint32(7), id.PoolIndex())
	ts.Equal(uint32(1234), id.SlotIndex())
}

func (ts *TaskIDTestSuite) TestExternalFlag() {
	id := MakeTaskID(1, 1, true)
	ts.True(id.External())
}

func (ts *TaskIDTestSuite) TestInvalidTaskIDIsNotValid() {
	ts.False(InvalidTaskID.Valid())
}

func (ts *TaskIDTestSuite) TestPoolIndexBoundary() {
	id := MakeTaskID(MaxTaskPools-1, MaxTasksPerPool-1, false)
	ts.Equal(uint32(MaxTaskPools-1), id.PoolIndex())
	ts.Equal(uint32(MaxTasksPerPool-1), id.SlotIndex())
}
