package rbtree //nolint:testpackage // shares helpers with the other package tests.

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressUInt32SliceRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test data.

	cases := map[string][]uint32{
		"empty":       {},
		"single":      {42},
		"repetitive":  make([]uint32, 4096),
		"sequential":  make([]uint32, 1024),
		"random":      make([]uint32, 512),
		"tiny random": {rng.Uint32(), rng.Uint32(), rng.Uint32()},
	}

	for idx := range cases["sequential"] {
		cases["sequential"][idx] = uint32(idx)
	}

	for idx := range cases["random"] {
		cases["random"][idx] = rng.Uint32()
	}

	for name, data := range cases {
		name, data := name, data
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			compressed := CompressUInt32Slice(data)
			require.NotNil(t, compressed)

			result := make([]uint32, len(data))
			require.NoError(t, DecompressUInt32Slice(compressed, result))
			assert.Equal(t, data, result)
		})
	}
}

func TestCompressByteSliceIncompressible(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(9)) //nolint:gosec // deterministic test data.

	data := make([]byte, 64)
	_, err := rng.Read(data)
	require.NoError(t, err)

	compressed := CompressByteSlice(data)
	assert.Equal(t, byte(rawBlock), compressed[0], "incompressible input is stored raw")

	result := make([]byte, len(data))
	require.NoError(t, DecompressByteSlice(compressed, result))
	assert.Equal(t, data, result)
}

func TestCompressByteSliceCompressible(t *testing.T) {
	t.Parallel()

	data := make([]byte, 4096)
	compressed := CompressByteSlice(data)

	assert.Equal(t, byte(lz4Block), compressed[0])
	assert.Less(t, len(compressed), len(data))

	result := make([]byte, len(data))
	require.NoError(t, DecompressByteSlice(compressed, result))
	assert.Equal(t, data, result)
}

func TestDecompressByteSliceErrors(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, DecompressByteSlice(nil, make([]byte, 1)), ErrTruncatedBlock)
	require.ErrorIs(t, DecompressByteSlice([]byte{rawBlock, 1, 2}, make([]byte, 5)), ErrTruncatedBlock)
	require.ErrorIs(t, DecompressByteSlice([]byte{0x7f}, make([]byte, 1)), ErrUnknownBlockKind)
}

func TestDeltaEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	data := []uint32{3, 7, 7, 10, 100, 1000}
	expected := append([]uint32(nil), data...)

	DeltaEncodeUInt32Slice(data)
	assert.Equal(t, []uint32{3, 4, 0, 3, 90, 900}, data)

	DeltaDecodeUInt32Slice(data)
	assert.Equal(t, expected, data)
}
