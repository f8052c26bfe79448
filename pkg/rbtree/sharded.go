package rbtree

import (
	"hash/fnv"
	"sync"
)

// minHibernationThreshold is the minimal reasonable default if division results in 0.
const minHibernationThreshold = 1000

// ShardedAllocator manages multiple Allocators to allow parallel access.
type ShardedAllocator[V any] struct {
	shards []*Allocator[V]
}

// NewShardedAllocator creates a new ShardedAllocator with shardCount shards.
func NewShardedAllocator[V any](shardCount, hibernationThreshold int, codec Codec[V]) *ShardedAllocator[V] {
	if shardCount <= 0 {
		shardCount = 1
	}

	shards := make([]*Allocator[V], shardCount)

	for idx := 0; idx < shardCount; idx++ {
		shards[idx] = NewAllocator(codec)

		if hibernationThreshold > 0 {
			shards[idx].HibernationThreshold = hibernationThreshold / shardCount
			if shards[idx].HibernationThreshold == 0 {
				shards[idx].HibernationThreshold = minHibernationThreshold
			}
		}
	}

	return &ShardedAllocator[V]{shards: shards}
}

// GetShard returns the allocator shard for the given key.
func (sa *ShardedAllocator[V]) GetShard(key string) *Allocator[V] {
	hasher := fnv.New32a()
	hasher.Write([]byte(key))

	idx := int(hasher.Sum32()) % len(sa.shards)
	if idx < 0 {
		idx = -idx
	}

	return sa.shards[idx]
}

// Shards returns all underlying allocators.
func (sa *ShardedAllocator[V]) Shards() []*Allocator[V] {
	return sa.shards
}

// HibernatedBytes returns the total compressed size across shards.
func (sa *ShardedAllocator[V]) HibernatedBytes() int {
	total := 0
	for _, shard := range sa.shards {
		total += shard.HibernatedBytes()
	}

	return total
}

// Hibernate hibernates all shards in parallel.
func (sa *ShardedAllocator[V]) Hibernate() {
	wg := sync.WaitGroup{}
	wg.Add(len(sa.shards))

	for _, shard := range sa.shards {
		go func(alloc *Allocator[V]) {
			defer wg.Done()

			// Force hibernation even if below threshold by temporarily setting threshold to 0.
			originalThreshold := alloc.HibernationThreshold
			alloc.HibernationThreshold = 0
			alloc.Hibernate()
			alloc.HibernationThreshold = originalThreshold
		}(shard)
	}

	wg.Wait()
}

// Boot boots all shards in parallel.
func (sa *ShardedAllocator[V]) Boot() {
	wg := sync.WaitGroup{}
	wg.Add(len(sa.shards))

	for _, shard := range sa.shards {
		go func(alloc *Allocator[V]) {
			defer wg.Done()

			alloc.Boot()
		}(shard)
	}

	wg.Wait()
}
