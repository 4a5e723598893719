// Package flog is the process-wide logger. It keeps the flat
// Debugf/Infof/Warnf/Errorf/Fatalf call surface callers already use, but the
// formatting, level filtering, and output backend are all zap's.
package flog

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the six levels the logging config accepts, including the
// "off" level that suppresses everything, which zap has no native concept
// of.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Off
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case Trace, Debug:
		return zapcore.DebugLevel
	case Info:
		return zapcore.InfoLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		// Off: pick a level nothing emitted by this package ever reaches.
		return zapcore.FatalLevel + 1
	}
}

// ParseLevel maps the TOML `log_level` string onto a Level, ignoring case.
// An unrecognized value is treated as an error the caller should report and
// is never silently coerced into a default.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return Trace, nil
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	case "off":
		return Off, nil
	default:
		return 0, fmt.Errorf("unrecognized log_level %q", s)
	}
}

// Backend selects where log output goes.
type Backend int

const (
	Console Backend = iota
	Journald
)

// Options configures the global logger built by Init.
type Options struct {
	Level             Level
	Backend           Backend
	DisableTimestamps bool
}

var sugar *zap.SugaredLogger

func init() {
	// A usable default before Init runs, so early startup errors (e.g. a
	// bad config file) still get logged somewhere.
	sugar = zap.Must(zap.NewProduction()).Sugar()
}

// Init builds the global logger from opts. It replaces the previous global
// logger; callers should invoke it once at startup after the config has
// been loaded.
func Init(opts Options) error {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if opts.DisableTimestamps {
		encCfg.TimeKey = zapcore.OmitKey
	}

	atomicLevel := zap.NewAtomicLevelAt(opts.Level.zapLevel())

	var core zapcore.Core
	switch opts.Backend {
	case Journald:
		writer, err := newJournaldWriter()
		if err != nil {
			return fmt.Errorf("failed to open journald logging backend: %w", err)
		}
		core = zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(writer), atomicLevel)
	default:
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), atomicLevel)
	}

	sugar = zap.New(core).Sugar()
	return nil
}

// L returns the current global structured logger, for components that want
// typed fields instead of the Printf-style helpers below.
func L() *zap.SugaredLogger { return sugar }

func Debugf(format string, args ...any) { sugar.Debugf(format, args...) }
func Infof(format string, args ...any)  { sugar.Infof(format, args...) }
func Warnf(format string, args ...any)  { sugar.Warnf(format, args...) }
func Errorf(format string, args ...any) { sugar.Errorf(format, args...) }

// Fatalf logs at error level and terminates the process, matching the
// teacher's Fatalf contract (log then exit 1) rather than zap's own
// Fatal level, since "off" must still be able to suppress it from output
// while the process still exits.
func Fatalf(format string, args ...any) {
	sugar.Errorf(format, args...)
	_ = sugar.Sync()
	os.Exit(1)
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = sugar.Sync()
}
