package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

type Logger struct {
	*slog.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

type Config struct {
	Level     slog.Level
	Format    string
	Output    io.Writer
	AddSource bool
	// FilePath, when set, receives a copy of every line in append mode.
	FilePath string
}

func DefaultConfig() *Config {
	return &Config{
		Level:     slog.LevelInfo,
		Format:    "text",
		Output:    os.Stderr,
		AddSource: false,
	}
}

// Init installs the process logger. Only the first call has an effect. The
// returned closer releases the log file, if any.
func Init(cfg *Config) (io.Closer, error) {
	var (
		closer  io.Closer = nopCloser{}
		initErr error
	)
	once.Do(func() {
		if cfg == nil {
			cfg = DefaultConfig()
		}

		output := cfg.Output
		if output == nil {
			output = os.Stderr
		}

		if cfg.FilePath != "" {
			f, err := OpenLogFile(cfg.FilePath)
			if err != nil {
				initErr = err
			} else {
				output = io.MultiWriter(output, f)
				closer = f
			}
		}

		defaultLogger = New(cfg, output)
	})
	return closer, initErr
}

// New builds a standalone logger; it does not touch the process default.
func New(cfg *Config, output io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{slog.New(handler).With("pid", os.Getpid())}
}

func OpenLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, nil
}

func L() *Logger {
	if defaultLogger == nil {
		Init(DefaultConfig())
	}
	return defaultLogger
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
