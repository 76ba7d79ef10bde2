// Package logging builds the process logger.
//
// Output never goes to stdout, which carries the stdio protocol stream.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/felixgeelhaar/mcp-server/config"
	"github.com/felixgeelhaar/mcp-server/middleware"
)

// New returns a zap logger configured by cfg. JSON output uses the
// production encoder, console output the development one. When cfg.File is
// set the log is written to a rotating file instead of stderr.
func New(cfg config.Log) (*zap.Logger, error) {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
	}
	return NewWithWriter(cfg, w)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg config.Log, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case config.FormatConsole:
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	case config.FormatJSON, "":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Adapter exposes a zap logger through middleware.Logger.
type Adapter struct {
	l *zap.Logger
}

var _ middleware.Logger = (*Adapter)(nil)

// NewAdapter wraps l. The caller frame is shifted so entries point at the
// middleware that logged them, not at the adapter.
func NewAdapter(l *zap.Logger) *Adapter {
	return &Adapter{l: l.WithOptions(zap.AddCallerSkip(1))}
}

// Zap returns the wrapped logger.
func (a *Adapter) Zap() *zap.Logger { return a.l }

func (a *Adapter) Info(msg string, fields ...middleware.Field) {
	a.l.Info(msg, zapFields(fields)...)
}

func (a *Adapter) Error(msg string, fields ...middleware.Field) {
	a.l.Error(msg, zapFields(fields)...)
}

func (a *Adapter) Debug(msg string, fields ...middleware.Field) {
	a.l.Debug(msg, zapFields(fields)...)
}

func (a *Adapter) Warn(msg string, fields ...middleware.Field) {
	a.l.Warn(msg, zapFields(fields)...)
}

func zapFields(fields []middleware.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		if err, ok := f.Value.(error); ok {
			out[i] = zap.NamedError(f.Key, err)
			continue
		}
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}
