// Package bheap provides a generic array-backed binary max-heap.
package bheap

// Heap is a binary max-heap ordered by a caller-supplied comparator:
// the element comparing largest pops first. The layout is 0-based,
// with the children of index i at 2i+1 and 2i+2.
type Heap[T any] struct {
	data []T
	cmp  func(a, b T) int
}

// New creates an empty heap ordered by cmp.
func New[T any](cmp func(a, b T) int) *Heap[T] {
	if cmp == nil {
		panic("bheap: nil comparator")
	}

	return &Heap[T]{cmp: cmp}
}

// Len returns the number of queued elements.
func (h *Heap[T]) Len() int {
	return len(h.data)
}

// Push queues value.
func (h *Heap[T]) Push(value T) {
	h.data = append(h.data, value)
	h.siftUp(len(h.data) - 1)
}

// Peek returns the largest element without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	if len(h.data) == 0 {
		var zero T

		return zero, false
	}

	return h.data[0], true
}

// Pop removes and returns the largest element.
func (h *Heap[T]) Pop() (T, bool) {
	if len(h.data) == 0 {
		var zero T

		return zero, false
	}

	top := h.data[0]
	last := len(h.data) - 1
	h.data[0] = h.data[last]

	var zero T

	h.data[last] = zero
	h.data = h.data[:last]

	if len(h.data) > 0 {
		h.siftDown(0)
	}

	return top, true
}

func (h *Heap[T]) siftUp(idx int) {
	for idx > 0 {
		parent := (idx - 1) / 2
		if h.cmp(h.data[parent], h.data[idx]) >= 0 {
			return
		}

		h.data[parent], h.data[idx] = h.data[idx], h.data[parent]
		idx = parent
	}
}

func (h *Heap[T]) siftDown(idx int) {
	for {
		left := 2*idx + 1
		if left >= len(h.data) {
			return
		}

		largest := left

		right := left + 1
		if right < len(h.data) && h.cmp(h.data[right], h.data[left]) > 0 {
			largest = right
		}

		if h.cmp(h.data[idx], h.data[largest]) >= 0 {
			return
		}

		h.data[idx], h.data[largest] = h.data[largest], h.data[idx]
		idx = largest
	}
}
