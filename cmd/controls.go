package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smazurov/camcore/internal/logging"
	"github.com/smazurov/camcore/pkg/camera"
)

// CreateControlsCmd creates the controls command with its list, get
// and set subcommands.
func CreateControlsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "controls",
		Short: "Inspect and set device controls",
	}
	cmd.AddCommand(createControlsListCmd())
	cmd.AddCommand(createControlsGetCmd())
	cmd.AddCommand(createControlsSetCmd())
	return cmd
}

func createControlsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <device>",
		Short: "List all controls",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			cam := openCamera(args[0])
			defer cam.Close()

			it := cam.Controls()
			for {
				c, ok := it.Next()
				if !ok {
					break
				}
				printControl(c)
			}
			if err := it.Err(); err != nil {
				fmt.Fprintf(os.Stderr, "enumerating controls: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

func createControlsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <device> <control-id>",
		Short: "Read one control",
		Args:  cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			id := parseControlID(args[1])
			cam := openCamera(args[0])
			defer cam.Close()

			c, err := cam.GetControl(id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading control: %v\n", err)
				os.Exit(1)
			}
			printControl(c)
		},
	}
}

func createControlsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <device> <control-id> [value]",
		Short: "Write a control value, or press a button control",
		Args:  cobra.RangeArgs(2, 3),
		Run: func(_ *cobra.Command, args []string) {
			id := parseControlID(args[1])
			var value any
			if len(args) == 3 {
				value = parseControlValue(args[2])
			}

			cam := openCamera(args[0])
			defer cam.Close()

			if err := cam.SetControl(id, value); err != nil {
				fmt.Fprintf(os.Stderr, "setting control: %v\n", err)
				os.Exit(1)
			}
			if c, err := cam.GetControl(id); err == nil {
				printControl(c)
			}
		},
	}
}

func openCamera(path string) *camera.Camera {
	logging.Initialize(logging.Config{Level: "warn", Format: "text"})
	cam, err := camera.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening %s: %v\n", path, err)
		os.Exit(1)
	}
	return cam
}

// parseControlID accepts decimal or 0x-prefixed hex.
func parseControlID(s string) uint32 {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid control id %q\n", s)
		os.Exit(1)
	}
	return uint32(id)
}

// parseControlValue tries integer, then boolean, then falls back to a
// string value.
func parseControlValue(s string) any {
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func printControl(c *camera.Control) {
	switch d := c.Data.(type) {
	case camera.IntegerData:
		fmt.Printf("0x%08x %-32s int      %d (default %d, range %d..%d step %d)\n",
			c.ID, c.Name, d.Value, d.Default, d.Minimum, d.Maximum, d.Step)
	case camera.BooleanData:
		fmt.Printf("0x%08x %-32s bool     %v (default %v)\n", c.ID, c.Name, d.Value, d.Default)
	case camera.MenuData:
		fmt.Printf("0x%08x %-32s menu     %d (default %d)\n", c.ID, c.Name, d.Value, d.Default)
		for _, item := range d.Items {
			marker := " "
			if item.Index == d.Value {
				marker = "*"
			}
			fmt.Printf("           %s %d: %s\n", marker, item.Index, item.Name)
		}
	case camera.IntegerMenuData:
		fmt.Printf("0x%08x %-32s intmenu  %d (default %d)\n", c.ID, c.Name, d.Value, d.Default)
		for _, item := range d.Items {
			marker := " "
			if item.Index == d.Value {
				marker = "*"
			}
			fmt.Printf("           %s %d: %d\n", marker, item.Index, item.Value)
		}
	case camera.BitmaskData:
		fmt.Printf("0x%08x %-32s bitmask  0x%x (default 0x%x, mask 0x%x)\n",
			c.ID, c.Name, d.Value, d.Default, d.Maximum)
	case camera.Integer64Data:
		fmt.Printf("0x%08x %-32s int64    %d (default %d, range %d..%d step %d)\n",
			c.ID, c.Name, d.Value, d.Default, d.Minimum, d.Maximum, d.Step)
	case camera.StringData:
		fmt.Printf("0x%08x %-32s string   %q (length %d..%d)\n",
			c.ID, c.Name, d.Value, d.MinLength, d.MaxLength)
	case camera.ButtonData:
		fmt.Printf("0x%08x %-32s button\n", c.ID, c.Name)
	case camera.CtrlClassData:
		fmt.Printf("--- %s ---\n", c.Name)
	default:
		fmt.Printf("0x%08x %-32s (unsupported type)\n", c.ID, c.Name)
	}
}
