// Package logger sets up the zap logger shared by the census commands and
// hands it to library code as a logr.Logger carried in the context.
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

const (
	// FormatAuto picks console output on a terminal and JSON otherwise
	FormatAuto = "auto"
	// FormatJSON always writes JSON lines
	FormatJSON = "json"
	// FormatConsole always writes human-readable lines
	FormatConsole = "console"
)

// New builds a zap logger writing to stderr. stdout is reserved for command output.
func New(level, format string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case FormatJSON:
		cfg = zap.NewProductionConfig()
	case FormatConsole:
		cfg = zap.NewDevelopmentConfig()
	case FormatAuto, "":
		if term.IsTerminal(int(os.Stderr.Fd())) {
			cfg = zap.NewDevelopmentConfig()
		} else {
			cfg = zap.NewProductionConfig()
		}
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	return cfg.Build()
}

// ParseLevel maps a textual level to a zap level. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// Initialize replaces the global zap logger
func Initialize(l *zap.Logger) {
	zap.ReplaceGlobals(l)
}

// Get returns the global sugared logger
func Get() *zap.SugaredLogger {
	return zap.S()
}

// NewContext stores a logr view of the global logger in ctx
func NewContext(ctx context.Context) context.Context {
	return logr.NewContext(ctx, zapr.NewLogger(zap.L()))
}

// Debugf logs a formatted message at debug level
func Debugf(msg string, args ...any) {
	zap.S().Debugf(msg, args...)
}

// Infof logs a formatted message at info level
func Infof(msg string, args ...any) {
	zap.S().Infof(msg, args...)
}

// Warnf logs a formatted message at warn level
func Warnf(msg string, args ...any) {
	zap.S().Warnf(msg, args...)
}

// Errorf logs a formatted message at error level
func Errorf(msg string, args ...any) {
	zap.S().Errorf(msg, args...)
}
