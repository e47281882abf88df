// Package logging provides structured logging for the trade journal using zap.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"trade-journal/internal/config"
)

// Options configures Build.
type Options struct {
	Level      string
	Dir        string // empty disables the log file
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Stdout     bool
	// Console replaces stdout with an alternative writer, used by tests and the CLI.
	Console    io.Writer
}

// FromConfig maps the app and log sections of cfg to Options.
func FromConfig(cfg *config.Config) Options {
	stdout := true
	if cfg.Log.Stdout != nil {
		stdout = *cfg.Log.Stdout
	}
	return Options{
		Level:      cfg.App.LogLevel,
		Dir:        cfg.Log.Dir,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Stdout:     stdout,
	}
}

// Build creates a new zap.Logger with JSON output to a rotated file and stdout.
func Build(opts Options) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", opts.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	var cores []zapcore.Core
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating logs directory: %w", err)
		}
		file := opts.File
		if file == "" {
			file = "journal.log"
		}
		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, file),
			MaxSize:    opts.MaxSizeMB, // MB
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays, // days
			Compress:   opts.Compress,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(fileWriter), lvl))
	}

	switch {
	case opts.Console != nil:
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(opts.Console), lvl))
	case opts.Stdout:
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(os.Stdout), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, nil
}
