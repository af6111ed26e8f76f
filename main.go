package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/camcore/cmd"
	"github.com/smazurov/camcore/internal/api"
	"github.com/smazurov/camcore/internal/config"
	"github.com/smazurov/camcore/internal/events"
	"github.com/smazurov/camcore/internal/hotplug"
	"github.com/smazurov/camcore/internal/logging"
	"github.com/smazurov/camcore/internal/metrics"
	"github.com/smazurov/camcore/internal/systemd"
	"github.com/smazurov/camcore/pkg/camera"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Address to listen on" short:"p" default:":8080" toml:"server.port" env:"SERVER_PORT"`

	// Capture settings
	ProfilesFile       string `help:"Capture profiles file" default:"profiles.toml" toml:"capture.profiles_file" env:"PROFILES_FILE"`
	SnapshotSkipFrames int    `help:"Frames discarded before a snapshot" default:"3" toml:"capture.snapshot_skip_frames" env:"SNAPSHOT_SKIP_FRAMES"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingCamera  string `help:"Camera logging level" default:"info" toml:"logging.camera" env:"LOGGING_CAMERA"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP    string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingHotplug string `help:"Hotplug logging level" default:"info" toml:"logging.hotplug" env:"LOGGING_HOTPLUG"`
	LoggingConfig  string `help:"Config reload logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// The callback runs after flag parsing, so the root command
		// knows which flags were set explicitly.
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"camera":  opts.LoggingCamera,
				"api":     opts.LoggingAPI,
				"http":    opts.LoggingHTTP,
				"hotplug": opts.LoggingHotplug,
				"config":  opts.LoggingConfig,
			},
		})
		logger := logging.GetLogger("main")

		eventBus := events.New()

		server := api.NewServer(api.NewDeviceService(), eventBus, &api.Options{
			AuthUsername:       opts.AuthUsername,
			AuthPassword:       opts.AuthPassword,
			SnapshotSkipFrames: opts.SnapshotSkipFrames,
			MetricsHandler:     metrics.Handler(),
		})

		ctx, cancel := context.WithCancel(context.Background())

		// Profiles are watched so edits take effect without a restart.
		var profileWatcher *config.Watcher[map[string]config.Profile]
		if _, statErr := os.Stat(opts.ProfilesFile); statErr == nil {
			profileWatcher = config.NewConfigWatcher(
				opts.ProfilesFile,
				config.LoadProfiles,
				logging.GetLogger("config"),
			)
			profileWatcher.OnReload(func(profiles map[string]config.Profile) {
				logger.Info("Profiles reloaded", "count", len(profiles))
			})
		}

		hooks.OnStart(func() {
			go runHotplugMonitor(ctx, eventBus, logger)

			if profileWatcher != nil {
				if err := profileWatcher.Start(); err != nil {
					logger.Warn("Failed to start profile watcher", "error", err)
				}
			}

			systemd.NotifyReady()
			go systemd.RunWatchdog(ctx)

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			systemd.NotifyStopping()
			logger.Info("Shutting down")
			cancel()
			if profileWatcher != nil {
				profileWatcher.Stop()
			}
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
		})
	})

	cli.Root().AddCommand(cmd.CreateDevicesCmd())
	cli.Root().AddCommand(cmd.CreateFormatsCmd())
	cli.Root().AddCommand(cmd.CreateControlsCmd())
	cli.Root().AddCommand(cmd.CreateCaptureCmd())

	cli.Run()
}

// runHotplugMonitor publishes device events for hotplug changes until
// the context is cancelled.
func runHotplugMonitor(ctx context.Context, bus *events.Bus, logger *slog.Logger) {
	monitor, err := hotplug.NewMonitor()
	if err != nil {
		logger.Warn("Hotplug monitoring unavailable", "error", err)
		return
	}
	defer monitor.Close()

	changes := make(chan hotplug.Change, 16)
	go func() {
		if runErr := monitor.Run(ctx, changes); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Warn("Hotplug monitor stopped", "error", runErr)
		}
	}()

	for change := range changes {
		ev := events.DeviceEvent{
			Path:      change.Path,
			Timestamp: time.Now().Format(time.RFC3339),
		}
		switch change.Action {
		case hotplug.ActionAdd:
			ev.Action = "added"
			// The node needs a moment to become openable after the
			// uevent arrives.
			time.Sleep(200 * time.Millisecond)
			if devices, findErr := camera.FindDevices(); findErr == nil {
				for _, d := range devices {
					if d.Path == change.Path {
						ev.ID = d.ID
						ev.Name = d.Name
						break
					}
				}
			}
		case hotplug.ActionRemove:
			ev.Action = "removed"
			metrics.DeleteDevice(change.Path)
		}

		logger.Info("Device change", "action", ev.Action, "path", ev.Path)
		bus.Publish(ev)
	}
}
