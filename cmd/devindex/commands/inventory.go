// Package commands implements the devindex CLI subcommands.
package commands

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyInventory is returned when an inventory file lists no devices.
var ErrEmptyInventory = errors.New("inventory contains no devices")

// inventoryEntry is one device record in a YAML inventory file.
type inventoryEntry struct {
	ID       uint64 `yaml:"id"`
	Address  string `yaml:"address"`
	Path     string `yaml:"path"`
	Site     string `yaml:"site"`
	Messages uint64 `yaml:"messages"`
}

// loadInventory parses a YAML inventory file.
func loadInventory(path string) ([]inventoryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}

	var entries []inventoryEntry

	err = yaml.Unmarshal(data, &entries)
	if err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}

	if len(entries) == 0 {
		return nil, ErrEmptyInventory
	}

	return entries, nil
}
