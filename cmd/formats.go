package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/camcore/internal/logging"
	"github.com/smazurov/camcore/pkg/camera"
)

// CreateFormatsCmd creates the formats command.
func CreateFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats <device>",
		Short: "Show formats, resolutions and framerates",
		Long:  `Prints every pixel format the device supports, the frame sizes available for each format, and the framerates available for each size.`,
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})

			cam, err := camera.Open(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "opening %s: %v\n", args[0], err)
				os.Exit(1)
			}
			defer cam.Close()

			it := cam.Formats()
			for {
				f, ok := it.Next()
				if !ok {
					break
				}

				attrs := ""
				if f.Compressed {
					attrs += " compressed"
				}
				if f.Emulated {
					attrs += " emulated"
				}
				fmt.Printf("%s: %s%s\n", f.Format, f.Description, attrs)

				if err := printSizes(cam, f.Format); err != nil {
					fmt.Fprintf(os.Stderr, "  enumerating sizes: %v\n", err)
				}
			}
			if err := it.Err(); err != nil {
				fmt.Fprintf(os.Stderr, "enumerating formats: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

func printSizes(cam *camera.Camera, format string) error {
	info, err := cam.Resolutions(format)
	if err != nil {
		return err
	}

	if sw := info.Stepwise; sw != nil {
		fmt.Printf("  %dx%d to %dx%d, step %dx%d\n",
			sw.Min.Width, sw.Min.Height, sw.Max.Width, sw.Max.Height,
			sw.Step.Width, sw.Step.Height)
		return nil
	}

	for _, r := range info.Discrete {
		fmt.Printf("  %dx%d:", r.Width, r.Height)
		if err := printRates(cam, format, r); err != nil {
			fmt.Printf(" (framerates unavailable: %v)", err)
		}
		fmt.Println()
	}
	return nil
}

func printRates(cam *camera.Camera, format string, r camera.Resolution) error {
	info, err := cam.Intervals(format, r.Width, r.Height)
	if err != nil {
		return err
	}

	if sw := info.Stepwise; sw != nil {
		fmt.Printf(" %.4g-%.4g fps", sw.Max.FPS(), sw.Min.FPS())
		return nil
	}
	for _, iv := range info.Discrete {
		fmt.Printf(" %.4g", iv.FPS())
	}
	fmt.Print(" fps")
	return nil
}
