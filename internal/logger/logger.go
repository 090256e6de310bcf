// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/toyz/autoiface/internal/errors"
)

var (
	// Logger is the global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput is true when the logger writes JSON lines
	JSONOutput bool
)

func init() {
	// safe no-op logger until Initialize is called
	Logger = zap.NewNop().Sugar()
}

// Options configures Initialize
type Options struct {
	JSON   bool
	Level  string    // debug, info, warn or error; empty means warn
	Output io.Writer // defaults to stderr
}

// ParseLevel maps a level name to a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.WarnLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return lvl, errors.WrapConfigurationError("log.level", "parse", err).
			WithSuggestion("Use one of debug, info, warn, error")
	}
	return lvl, nil
}

// Initialize sets up the global logger
func Initialize(opts Options) error {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	JSONOutput = opts.JSON
	Logger = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(out), lvl)).Sugar()
	return nil
}

// Named returns a child of the global logger
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// Sync flushes buffered log entries
func Sync() {
	_ = Logger.Sync()
}
