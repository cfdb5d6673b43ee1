// Package log builds the logger writing the log file of a run.
package log

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02 15:04:05"

// EncoderConfig writes one line per event: timestamp, level and message.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "severity",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
}

// New creates the log file, truncating any previous log at the same path, and returns a logger
// writing to it. The returned function flushes the logger and closes the file.
func New(path string, lvl zap.AtomicLevel) (*zap.Logger, func() error, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to create log file %s", path)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(EncoderConfig()), zapcore.Lock(file), lvl)
	logger := zap.New(core)

	closeFn := func() error {
		_ = logger.Sync()

		return file.Close()
	}

	return logger, closeFn, nil
}

// ParseLevel returns the level named by lvl, falling back to info.
func ParseLevel(lvl string) zap.AtomicLevel {
	level, err := zap.ParseAtomicLevel(lvl)
	if err != nil {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return level
}
