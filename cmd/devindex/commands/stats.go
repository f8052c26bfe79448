package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devindex/internal/config"
	"github.com/Sumatoshi-tech/devindex/pkg/device"
	"github.com/Sumatoshi-tech/devindex/pkg/registry"
	"github.com/Sumatoshi-tech/devindex/pkg/safeconv"
)

// busiestDevices is how many top senders the stats report lists.
const busiestDevices = 3

// NewStatsCommand creates the `stats` command: shard an inventory into
// per-site indexes, report fleet statistics and exercise an arena
// hibernation round trip.
func NewStatsCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats <inventory.yaml>",
		Short: "Report per-site fleet statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runStats(args[0], configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")

	return cmd
}

func runStats(inventoryPath, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	entries, err := loadInventory(inventoryPath)
	if err != nil {
		return err
	}

	fleet := registry.NewFleet(cfg.Fleet.Shards, cfg.Hibernation.Threshold)
	monitor := registry.NewMessageMonitor()

	for _, entry := range entries {
		descriptor := device.Descriptor{ID: entry.ID, Address: entry.Address, Path: entry.Path}
		fleet.Register(entry.Site, descriptor)

		if entry.Messages > 0 {
			monitor.Post(registry.Notification{MessageCount: entry.Messages, Device: descriptor})
		}
	}

	writer := table.NewWriter()
	writer.SetOutputMirror(os.Stdout)
	writer.SetStyle(table.StyleLight)
	writer.AppendHeader(table.Row{"Site", "Devices", "Height"})

	for _, site := range fleet.Sites() {
		siteReg := fleet.Site(site)
		writer.AppendRow(table.Row{
			site,
			humanize.Comma(safeconv.MustUint64ToInt64(siteReg.Len())),
			siteReg.Height(),
		})
	}

	writer.AppendFooter(table.Row{
		"total",
		humanize.Comma(safeconv.MustUint64ToInt64(fleet.Len())),
		"",
	})
	writer.Render()

	printBusiest(monitor)

	liveSlots := fleet.ArenaSlots()

	fleet.Hibernate()
	fmt.Fprintf(os.Stdout, "arena: %s slots hibernated to %s\n",
		humanize.Comma(int64(liveSlots)), humanize.Bytes(uint64(fleet.HibernatedBytes())))
	fleet.Boot()

	verifyErr := fleet.Verify()
	if verifyErr != nil {
		color.Red("fleet verification failed after boot: %v", verifyErr)

		return verifyErr
	}

	color.Green("fleet verified after hibernation round trip")

	return nil
}

func printBusiest(monitor *registry.MessageMonitor) {
	if monitor.Pending() == 0 {
		return
	}

	fmt.Fprintln(os.Stdout, "busiest devices:")

	for i := 0; i < busiestDevices; i++ {
		notification, ok := monitor.Next()
		if !ok {
			break
		}

		fmt.Fprintf(os.Stdout, "  device %s (%s): %s pending messages\n",
			notification.Device, notification.Device.Address,
			humanize.Comma(safeconv.MustUint64ToInt64(notification.MessageCount)))
	}
}
