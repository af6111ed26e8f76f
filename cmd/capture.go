package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smazurov/camcore/internal/config"
	"github.com/smazurov/camcore/internal/logging"
	"github.com/smazurov/camcore/internal/metrics"
	"github.com/smazurov/camcore/pkg/camera"
)

// CreateCaptureCmd creates the capture command.
func CreateCaptureCmd() *cobra.Command {
	var (
		count        int
		outputDir    string
		format       string
		width        uint32
		height       uint32
		fps          uint32
		buffers      uint32
		profileName  string
		profilesFile string
		logJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "capture [device]",
		Short: "Capture frames to files",
		Long: `Starts a capture session on the device and writes raw frames to the output directory, one file per frame. ` +
			`The capture mode comes from the flags, or from a named profile in the profiles file. ` +
			`The device argument may be omitted when the profile names one.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			loggingConfig := logging.Config{Level: "info", Format: "text"}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("capture")

			var device string
			if len(args) == 1 {
				device = args[0]
			}
			cfg := camera.Config{
				Width:    width,
				Height:   height,
				Format:   format,
				NBuffers: buffers,
			}
			if fps > 0 {
				cfg.Interval = camera.Interval{Numerator: 1, Denominator: fps}
			}

			var controls map[string]int64
			if profileName != "" {
				profiles, err := config.LoadProfiles(profilesFile)
				if err != nil {
					logger.Error("Failed to load profiles", "error", err, "file", profilesFile)
					os.Exit(1)
				}
				profile, ok := profiles[profileName]
				if !ok {
					logger.Error("Profile not found", "profile", profileName)
					os.Exit(1)
				}
				applyProfile(&cfg, &device, profile)
				controls = profile.Controls
			}
			if device == "" {
				logger.Error("No device given and the profile names none")
				os.Exit(1)
			}

			cam, err := camera.Open(device)
			if err != nil {
				logger.Error("Failed to open device", "error", err, "device", device)
				os.Exit(1)
			}
			defer cam.Close()

			if err := applyControls(cam, controls); err != nil {
				logger.Error("Failed to apply profile controls", "error", err)
				os.Exit(1)
			}

			if err := cam.Start(&cfg); err != nil {
				logger.Error("Failed to start capture", "error", err)
				os.Exit(1)
			}
			metrics.SessionStarted()
			defer metrics.SessionStopped()

			w, h := cam.Resolution()
			logger.Info("Capturing", "device", device, "width", w, "height", h, "count", count)

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				logger.Error("Failed to create output directory", "error", err)
				os.Exit(1)
			}

			for i := 0; i < count; i++ {
				frame, err := cam.Capture()
				if err != nil {
					metrics.RecordCaptureError(device)
					logger.Error("Capture failed", "error", err, "frame", i)
					os.Exit(1)
				}
				metrics.RecordFrame(device, frame.Len())

				name := filepath.Join(outputDir, fmt.Sprintf("frame-%04d.%s", i, strings.ToLower(frame.Format)))
				err = os.WriteFile(name, frame.Bytes(), 0o644)
				frame.Release()
				if err != nil {
					logger.Error("Failed to write frame", "error", err, "file", name)
					os.Exit(1)
				}
			}

			if err := cam.Stop(); err != nil {
				logger.Error("Failed to stop capture", "error", err)
				os.Exit(1)
			}
			logger.Info("Done", "frames", count, "dir", outputDir)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of frames to capture")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&format, "format", "f", "", "pixel format FourCC, e.g. YUYV or MJPG")
	cmd.Flags().Uint32Var(&width, "width", 0, "frame width in pixels")
	cmd.Flags().Uint32Var(&height, "height", 0, "frame height in pixels")
	cmd.Flags().Uint32Var(&fps, "fps", 0, "frame rate in frames per second")
	cmd.Flags().Uint32Var(&buffers, "buffers", 0, "number of kernel buffers")
	cmd.Flags().StringVar(&profileName, "profile", "", "capture profile name")
	cmd.Flags().StringVar(&profilesFile, "profiles", "profiles.toml", "capture profiles file")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "log in JSON format")

	return cmd
}

// applyProfile fills unset config fields and the device from a
// profile. Explicit flags win over profile values.
func applyProfile(cfg *camera.Config, device *string, p config.Profile) {
	if p.Device != "" && *device == "" {
		*device = p.Device
	}
	if cfg.Width == 0 && cfg.Height == 0 {
		cfg.Width, cfg.Height = p.Width, p.Height
	}
	if cfg.Format == "" {
		cfg.Format = p.Format
	}
	if cfg.Interval == (camera.Interval{}) && p.FPS > 0 {
		cfg.Interval = camera.Interval{Numerator: 1, Denominator: p.FPS}
	}
	if cfg.NBuffers == 0 {
		cfg.NBuffers = p.Buffers
	}
}

// applyControls sets profile controls by name. Names are matched
// against the driver's control names lowercased with underscores, e.g.
// "white_balance_temperature".
func applyControls(cam *camera.Camera, controls map[string]int64) error {
	if len(controls) == 0 {
		return nil
	}

	byName := make(map[string]uint32, len(controls))
	it := cam.Controls()
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		byName[normalizeControlName(c.Name)] = c.ID
	}
	if err := it.Err(); err != nil {
		return err
	}

	for name, value := range controls {
		id, ok := byName[normalizeControlName(name)]
		if !ok {
			return fmt.Errorf("control %q not found on device", name)
		}
		if err := cam.SetControl(id, value); err != nil {
			return fmt.Errorf("setting %q: %w", name, err)
		}
	}
	return nil
}

func normalizeControlName(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
