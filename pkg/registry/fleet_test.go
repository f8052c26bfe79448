package registry //nolint:testpackage // keeps fixtures shared across the backend tests.

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devindex/pkg/device"
)

func testFleet(siteCount, devicesPerSite int) *Fleet {
	fleet := NewFleet(4, 1<<20)

	for siteIdx := 0; siteIdx < siteCount; siteIdx++ {
		site := "site-" + strconv.Itoa(siteIdx)

		for deviceIdx := 0; deviceIdx < devicesPerSite; deviceIdx++ {
			fleet.Register(site, device.Descriptor{
				ID:      uint64(siteIdx*1000 + deviceIdx),
				Address: "10.0." + strconv.Itoa(siteIdx) + "." + strconv.Itoa(deviceIdx),
				Path:    "/" + site + "/" + strconv.Itoa(deviceIdx),
			})
		}
	}

	return fleet
}

func TestFleetSites(t *testing.T) {
	t.Parallel()

	fleet := testFleet(3, 10)

	assert.Equal(t, []string{"site-0", "site-1", "site-2"}, fleet.Sites())
	assert.Equal(t, uint64(30), fleet.Len())
	assert.Nil(t, fleet.Site("unknown"))

	site := fleet.Site("site-1")
	require.NotNil(t, site)
	assert.Equal(t, uint64(10), site.Len())

	found, ok := site.Find(1003)
	require.True(t, ok)
	assert.Equal(t, "10.0.1.3", found.Address)
}

func TestFleetVerify(t *testing.T) {
	t.Parallel()

	fleet := testFleet(5, 40)
	require.NoError(t, fleet.Verify())
	assert.Positive(t, fleet.ArenaSlots())
}

func TestFleetHibernateBootRoundTrip(t *testing.T) {
	t.Parallel()

	fleet := testFleet(5, 40)

	dumps := map[string]string{}
	for _, site := range fleet.Sites() {
		dumps[site] = fleet.Site(site).Dump()
	}

	fleet.Hibernate()
	assert.Positive(t, fleet.HibernatedBytes())

	fleet.Boot()
	require.NoError(t, fleet.Verify())

	for _, site := range fleet.Sites() {
		assert.Equal(t, dumps[site], fleet.Site(site).Dump(), site)
	}
}
