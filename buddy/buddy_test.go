package buddy

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type BuddyTestSuite struct {
	suite.Suite
}

func TestBuddyTestSuite(t *testing.T) {
	suite.Run(t, new(BuddyTestSuite))
}

func (ts *BuddyTestSuite) TestNewRejectsNonPowerOfTwo() {
	_, err := New(100, 16, 100, 0)
	ts.ErrorIs(err, ErrNotPowerOfTwo)
}

func (ts *BuddyTestSuite) TestNewRejectsMaxNotEqualToMemorySize() {
	_, err := New(1024, 16, 512, 0)
	ts.ErrorIs(err, ErrNotPowerOfTwo)
}

func (ts *BuddyTestSuite) TestAllocateAndFreeRoundTrip() {
	a, err := New(1024, 16, 1024, 0)
	ts.Require().NoError(err)

	blk, err := a.Allocate(16, 16)
	ts.Require().NoError(err)
	ts.Equal(uintptr(16), blk.Size)

	ts.Require().NoError(a.Free(blk))
	ts.Equal(uintptr(1024), a.FreeBytes())
}

func (ts *BuddyTestSuite) TestAllocateExhaustion() {
	a, err := New(64, 16, 64, 0)
	ts.Require().NoError(err)

	b1, err := a.Allocate(16, 16)
	ts.Require().NoError(err)
	b2, err := a.Allocate(16, 16)
	ts.Require().NoError(err)
	b3, err := a.Allocate(16, 16)
	ts.Require().NoError(err)
	b4, err := a.Allocate(16, 16)
	ts.Require().NoError(err)

	_, err = a.Allocate(16, 16)
	ts.ErrorIs(err, ErrOutOfMemory)

	ts.Require().NoError(a.Free(b1))
	ts.Require().NoError(a.Free(b2))
	ts.Require().NoError(a.Free(b3))
	ts.Require().NoError(a.Free(b4))
	ts.Equal(uintptr(64), a.FreeBytes())
}

func (ts *BuddyTestSuite) TestAllocateRoundsUpToMinBlockSize() {
	a, err := New(256, 32, 256, 0)
	ts.Require().NoError(err)

	blk, err := a.Allocate(1, 1)
	ts.Require().NoError(err)
	ts.Equal(uintptr(32), blk.Size)
}

func (ts *BuddyTestSuite) TestReservedTailNeverAllocated() {
	a, err := New(128, 16, 128, 32)
	ts.Require().NoError(err)
	ts.Equal(uintptr(96), a.FreeBytes())

	blk, err := a.Allocate(64, 16)
	ts.Require().NoError(err)
	ts.Equal(uintptr(64), blk.Size)

	blk, err = a.Allocate(32, 16)
	ts.Require().NoError(err)
	ts.Equal(uintptr(32), blk.Size)

	_, err = a.Allocate(16, 16)
	ts.ErrorIs(err, ErrOutOfMemory)
}

func (ts *BuddyTestSuite) TestBuddyCoalescingFreesFullRegion() {
	a, err := New(256, 16, 256, 0)
	ts.Require().NoError(err)

	blocks := make([]Block, 0, 16)
	for {
		blk, err := a.Allocate(16, 16)
		if err != nil {
			break
		}
		blocks = append(blocks, blk)
	}

	for _, b := range blocks {
		ts.Require().NoError(a.Free(b))
	}
	ts.Equal(uintptr(256), a.FreeBytes())

	blk, err := a.Allocate(256, 16)
	ts.Require().NoError(err)
	ts.Equal(uintptr(256), blk.Size)
}
