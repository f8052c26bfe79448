package registry

import (
	"fmt"
	"sort"

	"github.com/Sumatoshi-tech/devindex/pkg/device"
	"github.com/Sumatoshi-tech/devindex/pkg/rbtree"
)

// Fleet groups device registries by site on top of a common sharded
// arena. Sites hash onto shards, so several sites may share storage;
// hibernation and boot act on all shards in parallel.
type Fleet struct {
	sharded *rbtree.ShardedAllocator[device.Descriptor]
	sites   map[string]*DeviceRegistry
}

// NewFleet creates an empty fleet with shardCount arena shards.
func NewFleet(shardCount, hibernationThreshold int) *Fleet {
	return &Fleet{
		sharded: rbtree.NewShardedAllocator[device.Descriptor](
			shardCount, hibernationThreshold, device.BinaryCodec{}),
		sites: map[string]*DeviceRegistry{},
	}
}

// Register indexes d under site, creating the site registry on first
// use.
func (fleet *Fleet) Register(site string, d device.Descriptor) {
	reg, ok := fleet.sites[site]
	if !ok {
		reg = New(WithAllocator(fleet.sharded.GetShard(site)))
		fleet.sites[site] = reg
	}

	reg.Insert(d)
}

// Site returns the registry for site, nil when the site is unknown.
func (fleet *Fleet) Site(site string) *DeviceRegistry {
	return fleet.sites[site]
}

// Sites returns the known site names in sorted order.
func (fleet *Fleet) Sites() []string {
	sites := make([]string, 0, len(fleet.sites))
	for site := range fleet.sites {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	return sites
}

// Len returns the total device count across all sites.
func (fleet *Fleet) Len() uint64 {
	var total uint64
	for _, reg := range fleet.sites {
		total += reg.Len()
	}

	return total
}

// Hibernate compresses every arena shard. Site registries must not be
// used until Boot.
func (fleet *Fleet) Hibernate() {
	fleet.sharded.Hibernate()
}

// Boot restores every arena shard.
func (fleet *Fleet) Boot() {
	fleet.sharded.Boot()
}

// HibernatedBytes returns the total compressed arena size.
func (fleet *Fleet) HibernatedBytes() int {
	return fleet.sharded.HibernatedBytes()
}

// ArenaSlots returns the total allocated arena size across shards.
func (fleet *Fleet) ArenaSlots() int {
	total := 0
	for _, shard := range fleet.sharded.Shards() {
		total += shard.Size()
	}

	return total
}

// Verify checks the red-black invariants of every site index.
func (fleet *Fleet) Verify() error {
	for _, site := range fleet.Sites() {
		err := fleet.sites[site].Verify()
		if err != nil {
			return fmt.Errorf("site %s: %w", site, err)
		}
	}

	return nil
}
