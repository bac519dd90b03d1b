// Package logging builds the process logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "level",
	NameKey:        "logger",
	CallerKey:      "caller",
	FunctionKey:    zapcore.OmitKey,
	MessageKey:     "msg",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.LowercaseLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// Options select the destination and verbosity.
type Options struct {
	File  string // append here instead of stderr
	Debug bool
}

// New builds a console logger. If the log file cannot be opened the logger
// writes to stderr instead and says so.
func New(name string, o Options) *zap.SugaredLogger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if o.Debug {
		level.SetLevel(zap.DebugLevel)
	}

	cfg := zap.Config{
		Level:            level,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	var fileErr error
	if o.File != "" {
		cfg.OutputPaths = []string{o.File}
		l, err := cfg.Build(zap.AddStacktrace(zapcore.PanicLevel))
		if err == nil {
			return l.Named(name).Sugar()
		}
		fileErr = err
		cfg.OutputPaths = []string{"stderr"}
	}

	l := zap.Must(cfg.Build(zap.AddStacktrace(zapcore.PanicLevel))).Named(name).Sugar()
	if fileErr != nil {
		l.Warnw("log file unusable, logging to stderr", "file", o.File, "error", fileErr)
	}
	return l
}
