package registry

import (
	"github.com/Sumatoshi-tech/devindex/pkg/device"
	"github.com/Sumatoshi-tech/devindex/pkg/trie"
)

// PathRegistry is the alternate registry backend keyed by device path
// instead of numeric ID. Unlike the red-black index it supports
// removal; vacated branches are pruned.
type PathRegistry struct {
	paths *trie.Tree[device.Descriptor]
}

// NewPathRegistry creates an empty path registry.
func NewPathRegistry() *PathRegistry {
	return &PathRegistry{paths: trie.New[device.Descriptor]()}
}

// Add registers d under its path, replacing any previous holder. The
// descriptor path must be non-empty.
func (reg *PathRegistry) Add(d device.Descriptor) {
	reg.paths.Add(d.Path, d)
}

// Find returns the descriptor registered under path.
func (reg *PathRegistry) Find(path string) (device.Descriptor, bool) {
	return reg.paths.Find(path)
}

// Remove deregisters path and returns its former descriptor.
func (reg *PathRegistry) Remove(path string) (device.Descriptor, bool) {
	return reg.paths.Remove(path)
}

// Len returns the number of registered paths.
func (reg *PathRegistry) Len() uint64 {
	return reg.paths.Len()
}
