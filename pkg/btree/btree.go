// Package btree provides a bounded-fan-out ordered container. Nodes
// split at the median when they overflow; the tree supports insertion,
// lookup and an ascending walk, but no deletion.
package btree

import "slices"

// minFanOut is the smallest fan-out that still allows a median split.
const minFanOut = 3

type node[V any] struct {
	values   []V
	children []*node[V]
}

func (nd *node[V]) leaf() bool {
	return len(nd.children) == 0
}

// Tree is an ordered container with at most fanOut children per node,
// ordered by a caller-supplied comparator. Ties route right of equal
// values, matching the red-black index.
type Tree[V any] struct {
	root   *node[V]
	cmp    func(a, b V) int
	fanOut int
	count  uint64
}

// New creates an empty tree. fanOut is the maximum number of children
// per node and must be at least 3.
func New[V any](fanOut int, cmp func(a, b V) int) *Tree[V] {
	if fanOut < minFanOut {
		panic("btree: fan-out must be at least 3")
	}

	if cmp == nil {
		panic("btree: nil comparator")
	}

	return &Tree[V]{cmp: cmp, fanOut: fanOut}
}

// Len returns the number of stored values.
func (tree *Tree[V]) Len() uint64 {
	return tree.count
}

func (tree *Tree[V]) maxValues() int {
	return tree.fanOut - 1
}

// Insert adds value to the tree, splitting overflowing nodes on the
// way back up. It always succeeds; duplicates are accepted.
func (tree *Tree[V]) Insert(value V) {
	if tree.root == nil {
		tree.root = &node[V]{values: []V{value}}
		tree.count++

		return
	}

	tree.insertInto(tree.root, value)

	if len(tree.root.values) > tree.maxValues() {
		median, right := splitNode(tree.root)
		tree.root = &node[V]{
			values:   []V{median},
			children: []*node[V]{tree.root, right},
		}
	}

	tree.count++
}

// Find returns the stored value that compares equal to probe.
func (tree *Tree[V]) Find(probe V) (V, bool) {
	nd := tree.root

	for nd != nil {
		idx := 0

		for idx < len(nd.values) {
			comp := tree.cmp(nd.values[idx], probe)
			if comp == 0 {
				return nd.values[idx], true
			}

			if comp > 0 {
				break
			}

			idx++
		}

		if nd.leaf() {
			break
		}

		nd = nd.children[idx]
	}

	var zero V

	return zero, false
}

// Walk visits every value in ascending order.
func (tree *Tree[V]) Walk(fn func(value V)) {
	walkNode(tree.root, fn)
}

func walkNode[V any](nd *node[V], fn func(value V)) {
	if nd == nil {
		return
	}

	if nd.leaf() {
		for _, value := range nd.values {
			fn(value)
		}

		return
	}

	for idx, value := range nd.values {
		walkNode(nd.children[idx], fn)
		fn(value)
	}

	walkNode(nd.children[len(nd.values)], fn)
}

func (tree *Tree[V]) insertInto(nd *node[V], value V) {
	idx := tree.slotIndex(nd, value)

	if nd.leaf() {
		nd.values = slices.Insert(nd.values, idx, value)

		return
	}

	child := nd.children[idx]
	tree.insertInto(child, value)

	if len(child.values) > tree.maxValues() {
		median, right := splitNode(child)
		nd.values = slices.Insert(nd.values, idx, median)
		nd.children = slices.Insert(nd.children, idx+1, right)
	}
}

// slotIndex locates the position for value inside nd: slots holding
// values less-or-equal to it are passed over, so ties land right.
func (tree *Tree[V]) slotIndex(nd *node[V], value V) int {
	idx := 0
	for idx < len(nd.values) && tree.cmp(nd.values[idx], value) <= 0 {
		idx++
	}

	return idx
}

// splitNode detaches the upper half of an overflowing node into a new
// right sibling and returns the promoted median.
func splitNode[V any](nd *node[V]) (V, *node[V]) {
	mid := len(nd.values) / 2
	median := nd.values[mid]

	right := &node[V]{values: append([]V(nil), nd.values[mid+1:]...)}
	nd.values = nd.values[:mid:mid]

	if !nd.leaf() {
		right.children = append([]*node[V](nil), nd.children[mid+1:]...)
		nd.children = nd.children[: mid+1 : mid+1]
	}

	return median, right
}
