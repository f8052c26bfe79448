package rbtree //nolint:testpackage // tests inspect unexported allocator state.

import (
	"cmp"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errShortTestBuffer = errors.New("short test buffer")

// intCodec encodes non-negative ints as uvarints for hibernation tests.
type intCodec struct{}

func (intCodec) Append(dst []byte, value int) []byte {
	return binary.AppendUvarint(dst, uint64(value))
}

func (intCodec) Next(src []byte) (int, []byte, error) {
	value, n := binary.Uvarint(src)
	if n <= 0 {
		return 0, nil, errShortTestBuffer
	}

	return int(value), src[n:], nil
}

func testNewHibernatingTree() (*Tree[int], *Allocator[int]) {
	allocator := NewAllocator[int](intCodec{})

	return New(cmp.Compare[int], WithAllocator(allocator)), allocator
}

func TestAllocatorSizeUsed(t *testing.T) {
	t.Parallel()

	tree, allocator := testNewHibernatingTree()

	assert.Equal(t, 0, allocator.Size())
	assert.Equal(t, 0, allocator.Used())

	tree.Insert(1)
	tree.Insert(2)

	// Two nodes plus the reserved sentinel slot.
	assert.Equal(t, 3, allocator.Size())
	assert.Equal(t, 3, allocator.Used())
}

func TestHibernateBootRoundTrip(t *testing.T) {
	t.Parallel()

	tree, allocator := testNewHibernatingTree()
	rng := rand.New(rand.NewSource(31)) //nolint:gosec // deterministic test data.

	for _, value := range rng.Perm(100) {
		tree.Insert(value)
	}

	before := testInOrder(tree)

	allocator.Hibernate()

	assert.True(t, allocator.Hibernated())
	assert.Positive(t, allocator.HibernatedBytes())
	assert.Panics(t, func() { tree.Insert(1) }, "hibernated arenas reject inserts")
	assert.Panics(t, func() { allocator.Used() })

	allocator.Boot()

	assert.False(t, allocator.Hibernated())
	require.NoError(t, tree.Verify())
	assert.Equal(t, before, testInOrder(tree))

	// The arena stays fully usable after the round trip.
	tree.Insert(1000)
	require.NoError(t, tree.Verify())
}

func TestHibernatePreservesGaps(t *testing.T) {
	t.Parallel()

	tree, allocator := testNewHibernatingTree()

	for value := 0; value < 10; value++ {
		tree.Insert(value)
	}

	tree.Erase()
	tree.Insert(1)
	tree.Insert(2)

	sizeBefore := allocator.Size()
	usedBefore := allocator.Used()

	allocator.Hibernate()
	allocator.Boot()

	assert.Equal(t, sizeBefore, allocator.Size())
	assert.Equal(t, usedBefore, allocator.Used())
	require.NoError(t, tree.Verify())

	// New inserts keep recycling the preserved gaps.
	for value := 0; value < 5; value++ {
		tree.Insert(10 + value)
	}

	assert.Equal(t, sizeBefore, allocator.Size())
}

func TestHibernateBelowThreshold(t *testing.T) {
	t.Parallel()

	tree, allocator := testNewHibernatingTree()
	allocator.HibernationThreshold = 1000

	tree.Insert(1)
	allocator.Hibernate()

	assert.False(t, allocator.Hibernated())

	// Below the threshold the arena stays live.
	tree.Insert(2)
	require.NoError(t, tree.Verify())
}

func TestHibernateTwicePanics(t *testing.T) {
	t.Parallel()

	tree, allocator := testNewHibernatingTree()
	tree.Insert(1)

	allocator.Hibernate()

	assert.PanicsWithValue(t, "cannot hibernate an already hibernated allocator", func() {
		allocator.Hibernate()
	})
}

func TestHibernateWithoutCodecPanics(t *testing.T) {
	t.Parallel()

	allocator := NewAllocator[int](nil)
	tree := New(cmp.Compare[int], WithAllocator(allocator))
	tree.Insert(1)

	assert.PanicsWithValue(t, "hibernation requires a payload codec", func() {
		allocator.Hibernate()
	})
}

func TestBootEmptyAllocator(t *testing.T) {
	t.Parallel()

	allocator := NewAllocator[int](intCodec{})
	allocator.Hibernate()
	allocator.Boot()

	tree := New(cmp.Compare[int], WithAllocator(allocator))
	tree.Insert(1)
	require.NoError(t, tree.Verify())
}

func TestBootWithoutHibernationIsNoop(t *testing.T) {
	t.Parallel()

	tree, allocator := testNewHibernatingTree()
	tree.Insert(1)
	tree.Insert(2)

	allocator.Boot()

	assert.Equal(t, 3, allocator.Size())
	require.NoError(t, tree.Verify())
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	tree, allocator := testNewHibernatingTree()
	tree.Insert(1)
	tree.Insert(2)

	clone := allocator.Clone()
	sizeBefore := clone.Size()

	tree.Insert(3)

	assert.Equal(t, sizeBefore, clone.Size(), "clone unaffected by further inserts")
	assert.Equal(t, 4, allocator.Size())
}

func TestCloneHibernatedPanics(t *testing.T) {
	t.Parallel()

	tree, allocator := testNewHibernatingTree()
	tree.Insert(1)
	allocator.Hibernate()

	assert.PanicsWithValue(t, "cannot clone a hibernated allocator", func() {
		allocator.Clone()
	})
}

func TestFreeSentinelPanics(t *testing.T) {
	t.Parallel()

	tree, allocator := testNewHibernatingTree()
	tree.Insert(1)

	assert.PanicsWithValue(t, "node #0 is special and cannot be deallocated", func() {
		allocator.free(0)
	})
}

func TestDoubleFreePanics(t *testing.T) {
	t.Parallel()

	allocator := NewAllocator[int](nil)
	nodeIdx := allocator.malloc()
	allocator.free(nodeIdx)

	assert.PanicsWithValue(t, "rbtree: double free of an arena slot", func() {
		allocator.free(nodeIdx)
	})
}
