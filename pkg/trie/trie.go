// Package trie provides a character-keyed prefix map. Keys are
// NFC-normalized, so composed and decomposed spellings of the same
// text address the same entry.
package trie

import "golang.org/x/text/unicode/norm"

type node[V any] struct {
	children map[rune]*node[V]
	value    V
	occupied bool
}

func newNode[V any]() *node[V] {
	return &node[V]{children: map[rune]*node[V]{}}
}

// Tree maps string keys to values by character-by-character descent.
type Tree[V any] struct {
	root  *node[V]
	count uint64
}

// New creates an empty trie.
func New[V any]() *Tree[V] {
	return &Tree[V]{root: newNode[V]()}
}

// Len returns the number of stored keys.
func (tree *Tree[V]) Len() uint64 {
	return tree.count
}

// Add stores value under key, replacing any previous value without
// growing the length. The key must be non-empty.
func (tree *Tree[V]) Add(key string, value V) {
	key = norm.NFC.String(key)
	if key == "" {
		panic("trie: empty key")
	}

	current := tree.root

	for _, ch := range key {
		child, ok := current.children[ch]
		if !ok {
			child = newNode[V]()
			current.children[ch] = child
		}

		current = child
	}

	if !current.occupied {
		tree.count++
	}

	current.value = value
	current.occupied = true
}

// Find returns the value stored under key.
func (tree *Tree[V]) Find(key string) (V, bool) {
	current := tree.root

	for _, ch := range norm.NFC.String(key) {
		child, ok := current.children[ch]
		if !ok {
			var zero V

			return zero, false
		}

		current = child
	}

	if !current.occupied {
		var zero V

		return zero, false
	}

	return current.value, true
}

// Remove deletes key and returns its former value. Branches left
// without any stored key below them are pruned; prefixes shared with
// surviving keys stay in place.
func (tree *Tree[V]) Remove(key string) (V, bool) {
	value, removed := removeNode(tree.root, []rune(norm.NFC.String(key)))
	if removed {
		tree.count--
	}

	return value, removed
}

func removeNode[V any](current *node[V], key []rune) (V, bool) {
	if len(key) == 0 {
		if !current.occupied {
			var zero V

			return zero, false
		}

		value := current.value

		var zero V

		current.value = zero
		current.occupied = false

		return value, true
	}

	child, ok := current.children[key[0]]
	if !ok {
		var zero V

		return zero, false
	}

	value, removed := removeNode(child, key[1:])
	if removed && !child.occupied && len(child.children) == 0 {
		delete(current.children, key[0])
	}

	return value, removed
}
