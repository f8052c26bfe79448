package rbtree //nolint:testpackage // shares helpers with the other package tests.

import (
	"cmp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedAllocatorShardCount(t *testing.T) {
	t.Parallel()

	sharded := NewShardedAllocator[int](4, 0, intCodec{})
	assert.Len(t, sharded.Shards(), 4)

	// Non-positive counts collapse to a single shard.
	single := NewShardedAllocator[int](0, 0, intCodec{})
	assert.Len(t, single.Shards(), 1)
}

func TestShardedAllocatorStableRouting(t *testing.T) {
	t.Parallel()

	sharded := NewShardedAllocator[int](8, 0, intCodec{})

	for idx := 0; idx < 50; idx++ {
		key := "registry-" + strconv.Itoa(idx)
		assert.Same(t, sharded.GetShard(key), sharded.GetShard(key))
	}
}

func TestShardedAllocatorThresholdSplit(t *testing.T) {
	t.Parallel()

	sharded := NewShardedAllocator[int](4, 8000, intCodec{})
	for _, shard := range sharded.Shards() {
		assert.Equal(t, 2000, shard.HibernationThreshold)
	}

	// A threshold that divides to zero falls back to the minimum.
	tiny := NewShardedAllocator[int](4, 2, intCodec{})
	for _, shard := range tiny.Shards() {
		assert.Equal(t, minHibernationThreshold, shard.HibernationThreshold)
	}
}

func TestShardedHibernateBootRoundTrip(t *testing.T) {
	t.Parallel()

	sharded := NewShardedAllocator[int](4, 1<<20, intCodec{})
	trees := map[string]*Tree[int]{}
	expected := map[string][]int{}

	for _, name := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		tree := New(cmp.Compare[int], WithAllocator(sharded.GetShard(name)))

		for value := 0; value < 50; value++ {
			tree.Insert(value * len(name))
		}

		trees[name] = tree
		expected[name] = testInOrder(tree)
	}

	// Hibernate forces compression even below the per-shard threshold.
	sharded.Hibernate()
	assert.Positive(t, sharded.HibernatedBytes())

	sharded.Boot()

	for name, tree := range trees {
		require.NoError(t, tree.Verify(), name)
		assert.Equal(t, expected[name], testInOrder(tree), name)
	}
}
