// Package rbtree implements a red-black binary search tree over a flat
// node arena. Parent, left and right links are uint32 indices into the
// arena instead of pointers, which removes the parent/child reference
// cycle and keeps rotations to plain integer relinking. The arena can
// be LZ4-hibernated between uses.
package rbtree

import (
	"errors"
	"fmt"
	"strings"
)

const (
	red   = false
	black = true
)

type node[V any] struct {
	value               V
	parent, left, right uint32
	color               bool // Black or red.
}

// Verification errors. Verify returns the first violated invariant.
var (
	ErrRootNotBlack = errors.New("rbtree: root is not black")
	ErrRedRed       = errors.New("rbtree: red node has a red child")
	ErrBlackHeight  = errors.New("rbtree: unequal black heights")
	ErrOrder        = errors.New("rbtree: broken in-order sequence")
	ErrCount        = errors.New("rbtree: reachable node count does not match length")
)

// Tree is a red-black binary search tree ordered by a caller-supplied
// comparator. Duplicates are accepted: a value comparing equal to an
// existing node routes to its right subtree.
type Tree[V any] struct {
	allocator *Allocator[V]
	cmp       func(a, b V) int
	root      uint32
	count     uint64
}

// Option configures a Tree.
type Option[V any] func(*Tree[V])

// WithAllocator binds the tree to an existing arena. Several trees may
// share one allocator.
func WithAllocator[V any](allocator *Allocator[V]) Option[V] {
	return func(tree *Tree[V]) {
		tree.allocator = allocator
	}
}

// New creates an empty tree ordered by cmp.
func New[V any](cmp func(a, b V) int, opts ...Option[V]) *Tree[V] {
	if cmp == nil {
		panic("rbtree: nil comparator")
	}

	tree := &Tree[V]{cmp: cmp}

	for _, opt := range opts {
		opt(tree)
	}

	if tree.allocator == nil {
		tree.allocator = NewAllocator[V](nil)
	}

	return tree
}

func (tree *Tree[V]) storage() []node[V] {
	return tree.allocator.storage
}

// Allocator returns the bound nodes allocator.
func (tree *Tree[V]) Allocator() *Allocator[V] {
	return tree.allocator
}

// Len returns the number of stored values. Every Insert increments it,
// duplicates included.
func (tree *Tree[V]) Len() uint64 {
	return tree.count
}

// Insert adds value to the tree and rebalances. It always succeeds.
func (tree *Tree[V]) Insert(value V) {
	nodeIdx := tree.doInsert(value)
	tree.fixInsert(nodeIdx)
}

// Find returns the stored value that compares equal to probe.
func (tree *Tree[V]) Find(probe V) (V, bool) {
	storage := tree.storage()
	nodeIdx := tree.root

	for nodeIdx != 0 {
		comp := tree.cmp(storage[nodeIdx].value, probe)

		switch {
		case comp < 0:
			nodeIdx = storage[nodeIdx].right
		case comp > 0:
			nodeIdx = storage[nodeIdx].left
		default:
			return storage[nodeIdx].value, true
		}
	}

	var zero V

	return zero, false
}

// Walk visits every node in order (left subtree, node, right subtree)
// and calls fn with the stored value and its depth, the number of
// ancestors above the node. An empty tree produces zero calls.
func (tree *Tree[V]) Walk(fn func(value V, depth int)) {
	tree.walkNode(tree.root, 0, fn)
}

func (tree *Tree[V]) walkNode(nodeIdx uint32, depth int, fn func(value V, depth int)) {
	if nodeIdx == 0 {
		return
	}

	storage := tree.storage()
	tree.walkNode(storage[nodeIdx].left, depth+1, fn)
	fn(storage[nodeIdx].value, depth)
	tree.walkNode(storage[nodeIdx].right, depth+1, fn)
}

// Dump renders one line per node in walk order, indented two spaces
// per depth level. Diagnostic output, not a stable format.
func (tree *Tree[V]) Dump(render func(V) string) string {
	var sb strings.Builder

	tree.Walk(func(value V, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(render(value))
		sb.WriteByte('\n')
	})

	return sb.String()
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (tree *Tree[V]) Height() int {
	height := 0

	tree.Walk(func(_ V, depth int) {
		if depth+1 > height {
			height = depth + 1
		}
	})

	return height
}

// Erase removes every node and returns the arena slots to the allocator.
func (tree *Tree[V]) Erase() {
	nodes := make([]uint32, 0, tree.count)
	storage := tree.storage()

	var collect func(nodeIdx uint32)

	collect = func(nodeIdx uint32) {
		if nodeIdx == 0 {
			return
		}

		nodes = append(nodes, nodeIdx)
		collect(storage[nodeIdx].left)
		collect(storage[nodeIdx].right)
	}

	collect(tree.root)

	for _, nodeIdx := range nodes {
		tree.allocator.free(nodeIdx)
	}

	tree.root = 0
	tree.count = 0
}

// Verify checks the red-black invariants: black root, no red node with
// a red child, equal black heights on every root-to-leaf path, sorted
// in-order sequence, and a length matching the reachable node count.
func (tree *Tree[V]) Verify() error {
	if tree.root == 0 {
		if tree.count != 0 {
			return fmt.Errorf("%w: 0 reachable, %d recorded", ErrCount, tree.count)
		}

		return nil
	}

	storage := tree.storage()
	if storage[tree.root].color != black {
		return ErrRootNotBlack
	}

	_, err := tree.checkNode(tree.root)
	if err != nil {
		return err
	}

	var (
		prev     V
		prevSet  bool
		reached  uint64
		orderErr error
	)

	tree.Walk(func(value V, _ int) {
		reached++

		if prevSet && tree.cmp(prev, value) > 0 {
			orderErr = ErrOrder
		}

		prev, prevSet = value, true
	})

	if orderErr != nil {
		return orderErr
	}

	if reached != tree.count {
		return fmt.Errorf("%w: %d reachable, %d recorded", ErrCount, reached, tree.count)
	}

	return nil
}

// checkNode returns the black height of the subtree, counting the
// empty positions below it as one black node.
func (tree *Tree[V]) checkNode(nodeIdx uint32) (int, error) {
	if nodeIdx == 0 {
		return 1, nil
	}

	storage := tree.storage()
	nd := storage[nodeIdx]

	if nd.color == red {
		if nd.left != 0 && storage[nd.left].color == red {
			return 0, ErrRedRed
		}

		if nd.right != 0 && storage[nd.right].color == red {
			return 0, ErrRedRed
		}
	}

	leftHeight, err := tree.checkNode(nd.left)
	if err != nil {
		return 0, err
	}

	rightHeight, err := tree.checkNode(nd.right)
	if err != nil {
		return 0, err
	}

	if leftHeight != rightHeight {
		return 0, ErrBlackHeight
	}

	if nd.color == black {
		leftHeight++
	}

	return leftHeight, nil
}

// doInsert descends to the insertion point and links a new red leaf
// there. Values comparing greater-or-equal to the current node route
// right, strictly smaller route left, so ties land in the right
// subtree deterministically.
func (tree *Tree[V]) doInsert(value V) uint32 {
	if tree.root == 0 {
		nodeIdx := tree.allocator.malloc()
		storage := tree.storage()
		storage[nodeIdx].value = value
		storage[nodeIdx].color = red
		tree.root = nodeIdx
		tree.count++

		return nodeIdx
	}

	parent := tree.root
	storage := tree.storage()

	for {
		if tree.cmp(storage[parent].value, value) <= 0 {
			if storage[parent].right == 0 {
				nodeIdx := tree.allocator.malloc()
				// Append may reallocate the arena.
				storage = tree.storage()
				newNode := &storage[nodeIdx]
				newNode.value = value
				newNode.color = red
				newNode.parent = parent
				storage[parent].right = nodeIdx
				tree.count++

				return nodeIdx
			}

			parent = storage[parent].right
		} else {
			if storage[parent].left == 0 {
				nodeIdx := tree.allocator.malloc()
				storage = tree.storage()
				newNode := &storage[nodeIdx]
				newNode.value = value
				newNode.color = red
				newNode.parent = parent
				storage[parent].left = nodeIdx
				tree.count++

				return nodeIdx
			}

			parent = storage[parent].left
		}
	}
}

// fixInsert restores the red-black invariants after linking a new red
// leaf. One loop handles both uncle sides; the mirrored cases differ
// only in the rotation direction.
func (tree *Tree[V]) fixInsert(nodeIdx uint32) {
	storage := tree.storage()
	current := nodeIdx

	for {
		parent := storage[current].parent
		if parent == 0 {
			if storage[current].color != black {
				tree.switchColor(current, black)
			}

			break
		}

		if storage[parent].color == black {
			break
		}

		grandparent := storage[parent].parent
		if grandparent == 0 {
			break
		}

		uncleOnLeft := parent == storage[grandparent].right

		var uncle uint32
		if uncleOnLeft {
			uncle = storage[grandparent].left
		} else {
			uncle = storage[grandparent].right
		}

		// Red uncle: push the blackness down from the grandparent and
		// continue from there.
		if uncle != 0 && storage[uncle].color == red {
			tree.switchColor(parent, black)
			tree.switchColor(uncle, black)
			tree.switchColor(grandparent, red)
			current = grandparent

			continue
		}

		// Black or absent uncle. An inner-side current is first
		// rotated to the outer position around its parent.
		if uncleOnLeft && current == storage[parent].left {
			tree.rotateRight(parent)
			current = storage[current].right

			continue
		}

		if !uncleOnLeft && current == storage[parent].right {
			tree.rotateLeft(parent)
			current = storage[current].left

			continue
		}

		tree.switchColor(parent, black)
		tree.switchColor(grandparent, red)

		if uncleOnLeft {
			tree.rotateLeft(grandparent)
		} else {
			tree.rotateRight(grandparent)
		}

		break
	}

	// The loop may stop anywhere on the fixed-up path; the topmost
	// ancestor is the root, and blackening it is the one unconditional
	// recoloring.
	for storage[current].parent != 0 {
		current = storage[current].parent
	}

	tree.root = current
	tree.setColor(current, black)
}

// switchColor flips a node to the opposite color. Requesting the color
// the node already has masks a fixup logic error and panics.
func (tree *Tree[V]) switchColor(nodeIdx uint32, color bool) {
	storage := tree.storage()
	if storage[nodeIdx].color == color {
		panic("rbtree: recoloring a node to its current color")
	}

	storage[nodeIdx].color = color
}

// setColor assigns a color unconditionally. Used only to blacken the
// root after fixup.
func (tree *Tree[V]) setColor(nodeIdx uint32, color bool) {
	tree.storage()[nodeIdx].color = color
}

func isLeftChild[V any](nodeIdx uint32, storage []node[V]) bool {
	return nodeIdx == storage[storage[nodeIdx].parent].left
}

// rotateDirection performs a tree rotation in the specified direction.
// IsLeft=true performs left rotation, isLeft=false performs right rotation.
//
// Left rotation:
//
//	  X              Y
//	A   Y    =>    X   C
//	  B C        A B
//
// Right rotation:
//
//	    Y            X
//	  X   C  =>    A   Y
//	A B              B C
//
// The pivot must have a child on the side opposite to the rotation
// direction; rotating without one is a fixup logic error and panics.
//
//nolint:dupword // ASCII art diagrams contain intentional repeated letters.
func (tree *Tree[V]) rotateDirection(pivot uint32, isLeft bool) {
	storage := tree.storage()

	// Get the child in the opposite direction of rotation.
	var child uint32
	if isLeft {
		child = storage[pivot].right
	} else {
		child = storage[pivot].left
	}

	if child == 0 {
		panic("rbtree: rotation requires a child opposite to the rotation direction")
	}

	// Move the inner subtree.
	var innerSubtree uint32
	if isLeft {
		innerSubtree = storage[child].left
		storage[pivot].right = innerSubtree
	} else {
		innerSubtree = storage[child].right
		storage[pivot].left = innerSubtree
	}

	if innerSubtree != 0 {
		storage[innerSubtree].parent = pivot
	}

	// Update parent links.
	storage[child].parent = storage[pivot].parent

	if storage[pivot].parent == 0 {
		tree.root = child
	} else {
		if isLeftChild(pivot, storage) {
			storage[storage[pivot].parent].left = child
		} else {
			storage[storage[pivot].parent].right = child
		}
	}

	// Complete the rotation.
	if isLeft {
		storage[child].left = pivot
	} else {
		storage[child].right = pivot
	}

	storage[pivot].parent = child
}

func (tree *Tree[V]) rotateLeft(nodeIdx uint32) {
	tree.rotateDirection(nodeIdx, true)
}

func (tree *Tree[V]) rotateRight(nodeIdx uint32) {
	tree.rotateDirection(nodeIdx, false)
}
