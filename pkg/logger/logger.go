package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvVarLogLevel is the environment variable name for setting the log level.
	EnvVarLogLevel = "LOG_LEVEL"

	// EnvVarLogFormat selects the handler: "json" (default) or "text".
	EnvVarLogFormat = "LOG_FORMAT"
)

// Options describes a structured logger.
type Options struct {
	// Module and Version are attached to every record.
	Module  string
	Version string

	// Level is a level name such as "debug" or "warn".
	Level string

	// Format is "json" or "text".
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// OptionsFromEnv fills Level and Format from LOG_LEVEL and LOG_FORMAT.
func OptionsFromEnv(module, version string) Options {
	return Options{
		Module:  module,
		Version: version,
		Level:   os.Getenv(EnvVarLogLevel),
		Format:  os.Getenv(EnvVarLogFormat),
	}
}

// NewStructuredLogger creates a logger tagged with module and version.
// Source locations are included at debug level only.
func NewStructuredLogger(opts Options) *slog.Logger {
	lev := ParseLogLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     lev,
		AddSource: lev <= slog.LevelDebug,
	}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		h = slog.NewTextHandler(out, handlerOpts)
	} else {
		h = slog.NewJSONHandler(out, handlerOpts)
	}

	return slog.New(h).With("module", opts.Module, "version", opts.Version)
}

// NewLogLogger returns a standard library logger that writes through the
// default slog logger at the given level. It is meant for APIs such as
// http.Server.ErrorLog that still take a *log.Logger.
func NewLogLogger(level slog.Level) *log.Logger {
	return slog.NewLogLogger(slog.Default().Handler(), level)
}

// SetDefaultLogger configures the default logger from the environment.
func SetDefaultLogger(module, version string) {
	slog.SetDefault(NewStructuredLogger(OptionsFromEnv(module, version)))
}

// SetDefaultLoggerWithLevel configures the default logger with an explicit
// level; the format still comes from LOG_FORMAT.
func SetDefaultLoggerWithLevel(module, version, level string) {
	opts := OptionsFromEnv(module, version)
	opts.Level = level
	slog.SetDefault(NewStructuredLogger(opts))
}

// ParseLogLevel converts a level name into a slog.Level. Unrecognized
// names yield slog.LevelInfo.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
