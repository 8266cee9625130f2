// Package logging builds the process-wide scan logger.
//
// The logger is opened once by the root command, passed explicitly to the
// fetcher, probes and orchestrator, and closed when the command finishes.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	consts "github.com/securiscan/securiscan-cli/internal/shared/constants"
)

// Config controls where and how log lines are written
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig logs at info level, JSON encoded, into the results directory
func DefaultConfig(resultsDir string) Config {
	return Config{
		Level:      "info",
		Format:     "json",
		FilePath:   filepath.Join(resultsDir, consts.LogFileName),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// New creates a logger writing to a rotating file. At debug level the
// output is teed to stderr. The returned close function flushes buffered
// entries and releases the file.
func New(cfg Config) (*zap.SugaredLogger, func() error, error) {
	if cfg.FilePath == "" {
		return nil, nil, fmt.Errorf("log file path is required")
	}

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoder, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), consts.DefaultDirPerm); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(rotator), level)
	if level == zapcore.DebugLevel {
		console := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), level)
		core = zapcore.NewTee(core, console)
	}

	logger := zap.New(core).Sugar()
	closeFn := func() error {
		// Sync on a plain file never fails for reasons worth surfacing
		_ = logger.Sync()
		return rotator.Close()
	}

	return logger, closeFn, nil
}

// Nop returns a logger that discards everything
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newEncoder(format string) (zapcore.Encoder, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return zapcore.NewJSONEncoder(encoderConfig()), nil
	case "console", "text":
		return zapcore.NewConsoleEncoder(encoderConfig()), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	return cfg
}
