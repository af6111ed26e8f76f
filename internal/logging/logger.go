// Package logging configures log/slog for the whole process: one
// logger per module with an independently adjustable level, writing to
// stdout and, when running under systemd, to the journal.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mutex           sync.RWMutex
	moduleLoggers   = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig    Config
	globalLevelVar  = &slog.LevelVar{}
	initialized     bool
)

// Config is the logging section of the profile file.
type Config struct {
	// Level is the default level: debug, info, warn or error.
	Level string `toml:"level"`
	// Format selects the stdout handler: text or json.
	Format string `toml:"format"`
	// Modules overrides the level per module name.
	Modules map[string]string `toml:"modules"`
}

// Initialize applies the configuration, re-leveling every module
// logger that already exists and setting the process default logger.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	initialized = true

	level := parseLevel(config.Level, slog.LevelInfo)
	globalLevelVar.Set(level)

	for module, levelVar := range moduleLevelVars {
		moduleLevel := level
		if s, ok := config.Modules[module]; ok {
			moduleLevel = parseLevel(s, moduleLevel)
		}
		levelVar.Set(moduleLevel)
		moduleLoggers[module] = slog.New(newHandler(config.Format, levelVar)).With("module", module)
	}

	slog.SetDefault(slog.New(newHandler(config.Format, globalLevelVar)))
}

// GetLogger returns the logger for a module, creating it on first use.
// Loggers created before Initialize start at info level and are
// re-leveled when Initialize runs.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, ok := moduleLoggers[module]; ok {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()
	if logger, ok := moduleLoggers[module]; ok {
		return logger
	}

	levelVar := &slog.LevelVar{}
	format := "text"
	if initialized {
		level := parseLevel(globalConfig.Level, slog.LevelInfo)
		if s, ok := globalConfig.Modules[module]; ok {
			level = parseLevel(s, level)
		}
		levelVar.Set(level)
		format = globalConfig.Format
	} else {
		levelVar.Set(slog.LevelInfo)
	}

	logger := slog.New(newHandler(format, levelVar)).With("module", module)
	moduleLoggers[module] = logger
	moduleLevelVars[module] = levelVar
	return logger
}

// newHandler builds the output chain: stdout in the requested format,
// plus the journal when systemd is listening.
func newHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdout slog.Handler
	if format == "json" {
		stdout = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		stdout = slog.NewTextHandler(os.Stdout, opts)
	}

	if !journalAvailable() {
		return stdout
	}
	return newMultiHandler(stdout, newJournalHandler(level))
}

// parseLevel converts a level name, falling back when the name is
// unknown or empty.
func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
