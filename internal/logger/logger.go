// Package logger builds the zap loggers used across videostrip.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// Verbosity raises the level: 0 is info, 1 or more is debug.
	Verbosity int
	// JSON selects structured JSON output instead of the console encoder.
	JSON bool
	// Output defaults to stderr so it never mixes with progress output.
	Output io.Writer
}

// Level maps a verbosity count to a zap level.
func Level(verbosity int) zapcore.Level {
	if verbosity > 0 {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// New builds a sugared logger.
func New(opts Options) (*zap.SugaredLogger, error) {
	level := zap.NewAtomicLevelAt(Level(opts.Verbosity))

	if opts.JSON && opts.Output == nil {
		// JSON structured output for machine consumption
		config := zap.NewProductionConfig()
		config.Level = level
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		l, err := config.Build()
		if err != nil {
			return nil, err
		}
		return l.Sugar(), nil
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encoder := newConsoleEncoder()
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zap.New(core).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newConsoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = nil
	cfg.CallerKey = ""
	return zapcore.NewConsoleEncoder(cfg)
}
