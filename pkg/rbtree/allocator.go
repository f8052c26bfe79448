package rbtree

import (
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/devindex/pkg/safeconv"
)

// growCapacityNumerator and growCapacityDenominator define the 3/2 growth factor for storage.
const (
	growCapacityNumerator   = 3
	growCapacityDenominator = 2
)

// Indices into Allocator.hibernatedData. Link and color buffers are
// deinterleaved per field to achieve a better compression ratio.
const (
	parentBuffer  = 0
	leftBuffer    = 1
	rightBuffer   = 2
	colorBuffer   = 3
	payloadBuffer = 4
	gapsBuffer    = 5
	bufferCount   = 6
)

// Codec converts stored values to and from a compact binary form for
// allocator hibernation.
type Codec[V any] interface {
	// Append encodes value at the end of dst and returns the extended slice.
	Append(dst []byte, value V) []byte
	// Next decodes one value from the head of src and returns the rest.
	Next(src []byte) (value V, rest []byte, err error)
}

// Allocator is the node arena behind one or more trees. Nodes are
// addressed by uint32 indices; index 0 is the reserved empty-subtree
// sentinel and is never handed out.
type Allocator[V any] struct {
	storage              []node[V]
	gaps                 map[uint32]bool
	codec                Codec[V]
	hibernatedData       [bufferCount][]byte
	HibernationThreshold int
	hibernatedStorageLen int
	hibernatedGapsLen    int
	hibernatedValuesLen  int
}

// NewAllocator creates a new allocator for tree nodes. The codec is
// only required for hibernation and may be nil otherwise.
func NewAllocator[V any](codec Codec[V]) *Allocator[V] {
	return &Allocator[V]{
		storage: []node[V]{},
		gaps:    map[uint32]bool{},
		codec:   codec,
	}
}

// Size returns the currently allocated size.
func (allocator *Allocator[V]) Size() int {
	return len(allocator.storage)
}

// Used returns the number of nodes contained in the allocator.
func (allocator *Allocator[V]) Used() int {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	return len(allocator.storage) - len(allocator.gaps)
}

// Clone copies an existing allocator.
func (allocator *Allocator[V]) Clone() *Allocator[V] {
	if allocator.storage == nil {
		panic("cannot clone a hibernated allocator")
	}

	newAllocator := &Allocator[V]{
		HibernationThreshold: allocator.HibernationThreshold,
		storage:              make([]node[V], len(allocator.storage), cap(allocator.storage)),
		gaps:                 map[uint32]bool{},
		codec:                allocator.codec,
	}
	copy(newAllocator.storage, allocator.storage)
	maps.Copy(newAllocator.gaps, allocator.gaps)

	return newAllocator
}

// Hibernated reports whether the allocator currently holds compressed
// storage instead of live nodes.
func (allocator *Allocator[V]) Hibernated() bool {
	return allocator.storage == nil && allocator.hibernatedStorageLen > 0
}

// HibernatedBytes returns the total compressed size. Zero while the
// allocator is live.
func (allocator *Allocator[V]) HibernatedBytes() int {
	total := 0
	for _, data := range allocator.hibernatedData {
		total += len(data)
	}

	return total
}

// Hibernate compresses the allocated memory. Trees bound to the
// allocator must not be touched until Boot.
func (allocator *Allocator[V]) Hibernate() {
	if allocator.hibernatedStorageLen > 0 {
		panic("cannot hibernate an already hibernated allocator")
	}

	if len(allocator.storage) < allocator.HibernationThreshold {
		return
	}

	allocator.hibernatedStorageLen = len(allocator.storage)
	if allocator.hibernatedStorageLen == 0 {
		allocator.storage = nil

		return
	}

	if allocator.codec == nil {
		panic("hibernation requires a payload codec")
	}

	buffers := [4][]uint32{}
	for idx := range buffers {
		buffers[idx] = make([]uint32, len(allocator.storage))
	}

	values := []byte{}

	for idx, nd := range allocator.storage {
		buffers[parentBuffer][idx] = nd.parent
		buffers[leftBuffer][idx] = nd.left
		buffers[rightBuffer][idx] = nd.right

		if nd.color {
			buffers[colorBuffer][idx] = 1
		}

		values = allocator.codec.Append(values, nd.value)
	}

	allocator.hibernatedValuesLen = len(values)
	allocator.storage = nil

	wg := &sync.WaitGroup{}
	wg.Add(len(buffers) + 2)

	for idx, buffer := range buffers {
		go func(bufIdx int, buf []uint32) {
			allocator.hibernatedData[bufIdx] = CompressUInt32Slice(buf)
			buffers[bufIdx] = nil

			wg.Done()
		}(idx, buffer)
	}

	go func() {
		allocator.hibernatedData[payloadBuffer] = CompressByteSlice(values)

		wg.Done()
	}()

	// Compress gaps. Sorting plus delta encoding turns the index set
	// into small repetitive values.
	go func() {
		if len(allocator.gaps) > 0 {
			allocator.hibernatedGapsLen = len(allocator.gaps)

			gapKeys := make([]uint32, 0, len(allocator.gaps))
			for key := range allocator.gaps {
				gapKeys = append(gapKeys, key)
			}

			slices.Sort(gapKeys)
			DeltaEncodeUInt32Slice(gapKeys)

			allocator.hibernatedData[gapsBuffer] = CompressUInt32Slice(gapKeys)
		}

		allocator.gaps = nil

		wg.Done()
	}()

	wg.Wait()
}

// Boot performs the opposite of Hibernate() - decompresses and restores the allocated memory.
func (allocator *Allocator[V]) Boot() {
	if allocator.storage == nil && allocator.hibernatedStorageLen == 0 {
		allocator.storage = []node[V]{}
		allocator.gaps = map[uint32]bool{}

		return
	}

	if allocator.hibernatedStorageLen == 0 {
		// Not hibernated.
		return
	}

	allocator.gaps = map[uint32]bool{}
	buffers := [4][]uint32{}
	values := make([]byte, allocator.hibernatedValuesLen)

	var (
		mu   sync.Mutex
		errs []error
	)

	wg := &sync.WaitGroup{}
	wg.Add(len(buffers) + 2)

	for idx := range buffers {
		go func(bufIdx int) {
			defer wg.Done()

			buffers[bufIdx] = make([]uint32, allocator.hibernatedStorageLen)

			err := DecompressUInt32Slice(allocator.hibernatedData[bufIdx], buffers[bufIdx])
			if err != nil {
				mu.Lock()

				errs = append(errs, err)

				mu.Unlock()
			}

			allocator.hibernatedData[bufIdx] = nil
		}(idx)
	}

	go func() {
		defer wg.Done()

		err := DecompressByteSlice(allocator.hibernatedData[payloadBuffer], values)
		if err != nil {
			mu.Lock()

			errs = append(errs, err)

			mu.Unlock()
		}

		allocator.hibernatedData[payloadBuffer] = nil
	}()

	go func() {
		defer wg.Done()

		if allocator.hibernatedGapsLen == 0 {
			return
		}

		gapKeys := make([]uint32, allocator.hibernatedGapsLen)

		err := DecompressUInt32Slice(allocator.hibernatedData[gapsBuffer], gapKeys)
		if err != nil {
			mu.Lock()

			errs = append(errs, err)

			mu.Unlock()

			return
		}

		DeltaDecodeUInt32Slice(gapKeys)

		for _, key := range gapKeys {
			allocator.gaps[key] = true
		}

		allocator.hibernatedData[gapsBuffer] = nil
		allocator.hibernatedGapsLen = 0
	}()

	wg.Wait()

	if len(errs) > 0 {
		panic("rbtree: hibernated storage is corrupted: " + errs[0].Error())
	}

	capSize := (allocator.hibernatedStorageLen * growCapacityNumerator) / growCapacityDenominator
	allocator.storage = make([]node[V], allocator.hibernatedStorageLen, capSize)
	rest := values

	for idx := range allocator.storage {
		nd := &allocator.storage[idx]
		nd.parent = buffers[parentBuffer][idx]
		nd.left = buffers[leftBuffer][idx]
		nd.right = buffers[rightBuffer][idx]
		nd.color = buffers[colorBuffer][idx] > 0

		value, next, err := allocator.codec.Next(rest)
		if err != nil {
			panic("rbtree: hibernated payload decode failed: " + err.Error())
		}

		nd.value = value
		rest = next
	}

	allocator.hibernatedStorageLen = 0
	allocator.hibernatedValuesLen = 0
}

func (allocator *Allocator[V]) malloc() uint32 {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	if len(allocator.gaps) > 0 {
		var key uint32

		for key = range allocator.gaps {
			break
		}

		delete(allocator.gaps, key)

		return key
	}

	nodeLen := len(allocator.storage)
	if nodeLen == 0 {
		// Zero is reserved.
		allocator.storage = append(allocator.storage, node[V]{})
		nodeLen = 1
	}

	if nodeLen >= math.MaxUint32 {
		panic("rbtree: the allocator has reached the maximum index for uint32")
	}

	allocator.storage = append(allocator.storage, node[V]{})

	return safeconv.MustIntToUint32(nodeLen)
}

func (allocator *Allocator[V]) free(nodeIdx uint32) {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	if nodeIdx == 0 {
		panic("node #0 is special and cannot be deallocated")
	}

	if allocator.gaps[nodeIdx] {
		panic("rbtree: double free of an arena slot")
	}

	allocator.storage[nodeIdx] = node[V]{}
	allocator.gaps[nodeIdx] = true
}
