package commands

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devindex/internal/config"
	"github.com/Sumatoshi-tech/devindex/internal/logutil"
	"github.com/Sumatoshi-tech/devindex/pkg/btree"
	"github.com/Sumatoshi-tech/devindex/pkg/device"
	"github.com/Sumatoshi-tech/devindex/pkg/registry"
	"github.com/Sumatoshi-tech/devindex/pkg/safeconv"
)

// ErrIndexMismatch is returned when the red-black index and the
// bounded-fan-out shadow index disagree on the inventory.
var ErrIndexMismatch = errors.New("index cross-check mismatch")

// NewLoadCommand creates the `load` command: index a device inventory
// file, dump the resulting tree and verify its invariants.
func NewLoadCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "load <inventory.yaml>",
		Short: "Index a device inventory and verify the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runLoad(args[0], configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")

	return cmd
}

func runLoad(inventoryPath, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	level, err := logutil.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	logger := logutil.New(os.Stderr, level)

	entries, err := loadInventory(inventoryPath)
	if err != nil {
		return err
	}

	reg := registry.New(
		registry.WithLogger(logger),
		registry.WithHibernationThreshold(cfg.Hibernation.Threshold),
	)
	paths := registry.NewPathRegistry()
	shadow := btree.New(cfg.BTree.FanOut, device.Compare)

	for _, entry := range entries {
		descriptor := device.Descriptor{ID: entry.ID, Address: entry.Address, Path: entry.Path}
		reg.Insert(descriptor)
		shadow.Insert(descriptor)

		if entry.Path != "" {
			paths.Add(descriptor)
		}
	}

	fmt.Fprint(os.Stdout, reg.Dump())

	verifyErr := reg.Verify()
	if verifyErr != nil {
		color.Red("invariants violated: %v", verifyErr)

		return verifyErr
	}

	crossErr := crossCheck(reg, shadow)
	if crossErr != nil {
		color.Red("%v", crossErr)

		return crossErr
	}

	color.Green("red-black invariants hold, shadow index agrees")

	writer := table.NewWriter()
	writer.SetOutputMirror(os.Stdout)
	writer.SetStyle(table.StyleLight)
	writer.AppendHeader(table.Row{"Devices", "Paths", "Height", "Arena Slots"})
	writer.AppendRow(table.Row{
		humanize.Comma(safeconv.MustUint64ToInt64(reg.Len())),
		humanize.Comma(safeconv.MustUint64ToInt64(paths.Len())),
		reg.Height(),
		humanize.Comma(int64(reg.ArenaSize())),
	})
	writer.Render()

	return nil
}

// crossCheck compares the ascending ID sequences of the red-black
// index and the bounded-fan-out shadow index.
func crossCheck(reg *registry.DeviceRegistry, shadow *btree.Tree[device.Descriptor]) error {
	indexIDs := make([]uint64, 0, reg.Len())
	reg.Walk(func(d device.Descriptor, _ int) {
		indexIDs = append(indexIDs, d.ID)
	})

	shadowIDs := make([]uint64, 0, shadow.Len())
	shadow.Walk(func(d device.Descriptor) {
		shadowIDs = append(shadowIDs, d.ID)
	})

	if !slices.Equal(indexIDs, shadowIDs) {
		return fmt.Errorf("%w: %d indexed, %d shadowed", ErrIndexMismatch, len(indexIDs), len(shadowIDs))
	}

	return nil
}
