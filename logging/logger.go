// Package logging provides zap logger helpers.
package logging

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger for the CLI's own diagnostics. Output goes to
// stderr so it never lands inside the row block on stdout.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.OutputPaths = []string{"stderr"}
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

// OpenFile opens path for appending worker log entries. A sibling
// "<path>.lock" file is held for as long as the file is open, so two runs
// never interleave entries in the same log.
func OpenFile(path string) (zapcore.WriteSyncer, func() error, error) {
	lock := flock.New(path + ".lock")
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !acquired {
		return nil, nil, fmt.Errorf("log file %s is in use by another process", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	closeFn := func() error {
		defer lock.Unlock() //nolint:errcheck
		return f.Close()
	}
	return zapcore.Lock(f), closeFn, nil
}
