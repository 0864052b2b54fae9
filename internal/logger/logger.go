// Package logger builds the service's zap logger.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option configures New.
type Option struct {
	Writers []io.Writer
}

// OptionFunc type
type OptionFunc func(*Option)

// WithWriters replaces stdout as the log destination.
func WithWriters(w ...io.Writer) OptionFunc {
	return func(o *Option) {
		o.Writers = w
	}
}

// New creates a JSON logger at the given level ("debug", "info", "warn", "error").
func New(level string, opts ...OptionFunc) (*zap.Logger, error) {
	opt := Option{
		Writers: []io.Writer{os.Stdout},
	}
	for _, o := range opts {
		o(&opt)
	}

	var lvl zapcore.Level
	if level == "" {
		level = "info"
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey: "message",

		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.ISO8601TimeEncoder,

		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,

		EncodeDuration: zapcore.StringDurationEncoder,
	})

	var cores []zapcore.Core
	for _, w := range opt.Writers {
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
