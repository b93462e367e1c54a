// Package logging builds the process-wide *slog.Logger.
//
// Everything else in the service logs through log/slog. The backend decides
// what sits behind it: slog's own text/JSON handlers, or a zap core bridged in
// with zapslog for deployments that already ship zap-formatted logs.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Accepted values for Options.Format and Options.Backend.
const (
	FormatText = "text"
	FormatJSON = "json"

	BackendSlog = "slog"
	BackendZap  = "zap"
)

const timeLayout = "2006/01/02 15:04:05"

// Options selects level, format and backend. Zero values mean info/text/slog.
type Options struct {
	Level   string
	Format  string
	Backend string
}

// New returns a logger writing to w, plus a flush function to call on exit.
// The flush function is a no-op for the slog backend.
func New(opts Options, w io.Writer) (*slog.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatText
	}
	if format != FormatText && format != FormatJSON {
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendSlog:
		handlerOpts := &slog.HandlerOptions{Level: level}
		var h slog.Handler
		if format == FormatJSON {
			h = slog.NewJSONHandler(w, handlerOpts)
		} else {
			h = slog.NewTextHandler(w, handlerOpts)
		}
		return slog.New(h), func() {}, nil

	case BackendZap:
		core := newZapCore(format, level, w)
		return slog.New(zapslog.NewHandler(core)), func() { _ = core.Sync() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

// ParseLevel maps debug|info|warn|error (any case) to a slog.Level.
// An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func newZapCore(format string, level slog.Level, w io.Writer) zapcore.Core {
	var encoder zapcore.Encoder
	if format == FormatJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
		encoder = zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(zapLevel(level)))
}

func zapLevel(l slog.Level) zapcore.Level {
	switch {
	case l >= slog.LevelError:
		return zapcore.ErrorLevel
	case l >= slog.LevelWarn:
		return zapcore.WarnLevel
	case l >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
