package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every entry as the "service" field unless
// LoggingConfig.Service overrides it.
const ServiceName = "nexus"

// LoggingConfig contains logger configuration options.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error, fatal, panic).
	Level string

	// Format is json, or console/pretty for human-readable output.
	Format string

	// Output selects stdout or stderr. Ignored when Writer is set.
	Output string

	// Writer overrides Output. The CLI and tests use it.
	Writer io.Writer

	AddSource  bool
	TimeFormat string

	// Service names the process in every entry (nexus, nexusctl, migrate).
	Service string
}

// DefaultLoggingConfig returns the server defaults.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
		Service:    ServiceName,
	}
}

// NewLogger builds the root logger. It also sets the zerolog global level so
// loggers created elsewhere with zerolog.New obey the same threshold.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	out := cfg.Writer
	if out == nil {
		out = os.Stdout
		if strings.EqualFold(cfg.Output, "stderr") {
			out = os.Stderr
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: zerolog.TimeFieldFormat}
	}

	service := cfg.Service
	if service == "" {
		service = ServiceName
	}

	ctx := zerolog.New(out).With().Timestamp().Str("service", service)
	if cfg.AddSource {
		ctx = ctx.Caller()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
	return ctx.Logger().Level(level)
}

// parseLevel maps a configured level name to a zerolog level. Unknown or
// empty names fall back to info, and "warning" is accepted for warn.
func parseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	parsed, err := zerolog.ParseLevel(name)
	if err != nil || parsed == zerolog.NoLevel || parsed == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return parsed
}

// WithRequestContext adds HTTP request fields to a logger.
func WithRequestContext(logger zerolog.Logger, requestID, userID string) zerolog.Logger {
	return logger.With().
		Str("request_id", requestID).
		Str("user_id", userID).
		Logger()
}

// WithResolveContext adds metadata resolution fields to a logger.
func WithResolveContext(logger zerolog.Logger, input, source string) zerolog.Logger {
	return logger.With().
		Str("input", input).
		Str("source", source).
		Logger()
}

// WithPaperContext adds paper-related fields to a logger.
func WithPaperContext(logger zerolog.Logger, paperID, provenance string) zerolog.Logger {
	return logger.With().
		Str("paper_id", paperID).
		Str("provenance", provenance).
		Logger()
}

// WithComponent tags a logger with the component that owns it.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
