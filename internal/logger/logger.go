// Package logger builds the zap loggers used by the server and CLI.
package logger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// New returns a production logger (JSON) or a development logger (console).
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if text := strings.TrimSpace(opts.Level); text != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(text))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q", opts.Level)
		}
		level = parsed
	}

	var config zap.Config
	switch strings.ToLower(opts.Format) {
	case "", "json":
		config = zap.NewProductionConfig()
	case "console":
		config = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (supported: json, console)", opts.Format)
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

// Truncate shortens long values (prompts, raw model output) for log fields.
func Truncate(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut] + "... [truncated]"
}
