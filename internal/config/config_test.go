package config //nolint:testpackage // mirrors the package layout of the loader.

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	// An explicit but missing file is an error; no path means defaults.
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultBTreeFanOut, cfg.BTree.FanOut)
	assert.Equal(t, DefaultHibernationThreshold, cfg.Hibernation.Threshold)
	assert.Equal(t, DefaultFleetShards, cfg.Fleet.Shards)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "devindex.yaml")
	content := []byte("log_level: debug\nbtree:\n  fan_out: 8\nhibernation:\n  threshold: 64\nfleet:\n  shards: 2\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.BTree.FanOut)
	assert.Equal(t, 64, cfg.Hibernation.Threshold)
	assert.Equal(t, 2, cfg.Fleet.Shards)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "devindex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("btree:\n  fan_out: 5\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.BTree.FanOut)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultFleetShards, cfg.Fleet.Shards)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		content string
		wantErr error
	}{
		"bad log level": {"log_level: loud\n", ErrInvalidLogLevel},
		"bad fan-out":   {"btree:\n  fan_out: 2\n", ErrInvalidFanOut},
		"bad threshold": {"hibernation:\n  threshold: -1\n", ErrInvalidThreshold},
		"bad shards":    {"fleet:\n  shards: 0\n", ErrInvalidShards},
	}

	for name, testCase := range cases {
		name, testCase := name, testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "devindex.yaml")
			require.NoError(t, os.WriteFile(path, []byte(testCase.content), 0o600))

			_, err := LoadConfig(path)
			require.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		LogLevel:    "info",
		BTree:       BTreeConfig{FanOut: 3},
		Hibernation: HibernationConfig{Threshold: 0},
		Fleet:       FleetConfig{Shards: 1},
	}
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "verbose"
	require.ErrorIs(t, cfg.Validate(), ErrInvalidLogLevel)
}
