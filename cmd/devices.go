// Package cmd holds the CLI subcommands.
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smazurov/camcore/internal/logging"
	"github.com/smazurov/camcore/pkg/camera"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List video capture devices",
		Long:  `Scans the system for V4L2 devices that support streaming video capture and prints one line per device.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})

			devices, err := camera.FindDevices()
			if err != nil {
				fmt.Fprintf(os.Stderr, "scanning devices: %v\n", err)
				os.Exit(1)
			}
			if len(devices) == 0 {
				fmt.Println("no capture devices found")
				return
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tNAME\tDRIVER\tID")
			for _, d := range devices {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Path, d.Name, d.Driver, d.ID)
			}
			w.Flush()
		},
	}
}
