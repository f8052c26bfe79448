// Package registry binds the red-black index to the device descriptor
// type and layers the surrounding bookkeeping on top of it: message
// monitoring, path-keyed lookup and per-site fleet sharding.
package registry

import (
	"io"
	"log/slog"

	"github.com/Sumatoshi-tech/devindex/pkg/device"
	"github.com/Sumatoshi-tech/devindex/pkg/rbtree"
)

// DeviceRegistry is a red-black index of device descriptors keyed by
// their numeric ID. Duplicate IDs are accepted and kept.
type DeviceRegistry struct {
	tree      *rbtree.Tree[device.Descriptor]
	allocator *rbtree.Allocator[device.Descriptor]
	logger    *slog.Logger
	threshold int
}

// Option configures a DeviceRegistry.
type Option func(*DeviceRegistry)

// WithLogger routes insert tracing to the given logger. The default
// logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(reg *DeviceRegistry) {
		reg.logger = logger
	}
}

// WithHibernationThreshold sets the minimum arena size below which
// Hibernate is a no-op.
func WithHibernationThreshold(threshold int) Option {
	return func(reg *DeviceRegistry) {
		reg.threshold = threshold
	}
}

// WithAllocator binds the registry to a shared descriptor arena, for
// example one shard of a fleet.
func WithAllocator(allocator *rbtree.Allocator[device.Descriptor]) Option {
	return func(reg *DeviceRegistry) {
		reg.allocator = allocator
	}
}

// New creates an empty registry.
func New(opts ...Option) *DeviceRegistry {
	reg := &DeviceRegistry{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(reg)
	}

	if reg.allocator == nil {
		reg.allocator = rbtree.NewAllocator[device.Descriptor](device.BinaryCodec{})
	}

	if reg.threshold > 0 {
		reg.allocator.HibernationThreshold = reg.threshold
	}

	reg.tree = rbtree.New(device.Compare, rbtree.WithAllocator(reg.allocator))

	return reg
}

// Insert registers a descriptor. It always succeeds.
func (reg *DeviceRegistry) Insert(d device.Descriptor) {
	reg.tree.Insert(d)
	reg.logger.Debug("device registered",
		"id", d.ID, "address", d.Address, "path", d.Path, "len", reg.tree.Len())
}

// Find returns the descriptor registered under id.
func (reg *DeviceRegistry) Find(id uint64) (device.Descriptor, bool) {
	return reg.tree.Find(device.Descriptor{ID: id})
}

// Walk visits every descriptor in ascending ID order, passing its
// depth inside the index.
func (reg *DeviceRegistry) Walk(fn func(d device.Descriptor, depth int)) {
	reg.tree.Walk(fn)
}

// Len returns the number of registered descriptors.
func (reg *DeviceRegistry) Len() uint64 {
	return reg.tree.Len()
}

// Height returns the longest root-to-leaf path of the index.
func (reg *DeviceRegistry) Height() int {
	return reg.tree.Height()
}

// Dump renders the index one device ID per line, indented by depth.
func (reg *DeviceRegistry) Dump() string {
	return reg.tree.Dump(device.Descriptor.String)
}

// Verify checks the red-black invariants of the index.
func (reg *DeviceRegistry) Verify() error {
	return reg.tree.Verify()
}

// ArenaSize returns the number of allocated arena slots.
func (reg *DeviceRegistry) ArenaSize() int {
	return reg.allocator.Size()
}

// Allocator returns the backing descriptor arena.
func (reg *DeviceRegistry) Allocator() *rbtree.Allocator[device.Descriptor] {
	return reg.allocator
}

// Hibernate compresses the backing arena if it reached the configured
// threshold. The registry must not be used until Boot.
func (reg *DeviceRegistry) Hibernate() {
	reg.allocator.Hibernate()
}

// Boot restores a hibernated arena.
func (reg *DeviceRegistry) Boot() {
	reg.allocator.Boot()
}
