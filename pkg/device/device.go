// Package device defines the descriptor value stored by the registry
// backends, together with its ordering and binary codec.
package device

import "strconv"

// Descriptor identifies one registered device. Ordering and equality
// consider the numeric ID alone; the address and path are carried
// attributes.
type Descriptor struct {
	ID      uint64
	Address string
	Path    string
}

// Compare orders descriptors by ID.
func Compare(a, b Descriptor) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

// Equal reports whether other carries the same ID.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.ID == other.ID
}

// Clone returns an independent copy of the descriptor.
func (d Descriptor) Clone() Descriptor {
	return d
}

// String renders the identifying key.
func (d Descriptor) String() string {
	return strconv.FormatUint(d.ID, 10)
}
