package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"filesort/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths receive records in Format; "stdout" and "stderr" are
	// recognised, anything else is treated as a file path.
	OutputPaths []string
	// RunLogPath, when set, receives a human-readable copy of every record at
	// info level or above (debug when Level is debug).
	RunLogPath  string
	Development bool
}

// New constructs a slog logger using the provided options. The returned close
// function releases any files opened for output.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var files []*os.File
	closeAll := func() error {
		var errs []error
		for _, f := range files {
			if err := f.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	outputWriter, opened, err := openWriters(opts.OutputPaths)
	if err != nil {
		return nil, nil, err
	}
	files = append(files, opened...)

	var consoleHandler slog.Handler
	if outputWriter != nil {
		switch format {
		case "json":
			consoleHandler = newJSONHandler(outputWriter, levelVar, addSource)
		case "console":
			consoleHandler = newPrettyHandler(outputWriter, levelVar, addSource)
		default:
			_ = closeAll()
			return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
		}
	}

	var runLogHandler slog.Handler
	if path := strings.TrimSpace(opts.RunLogPath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		files = append(files, file)
		runLevel := new(slog.LevelVar)
		runLevel.Set(min(level, slog.LevelInfo))
		runLogHandler = newPrettyHandler(file, runLevel, false)
	}

	return slog.New(newFanoutHandler(consoleHandler, runLogHandler)), closeAll, nil
}

// NewFromConfig creates a logger using application config defaults. When quiet
// is true nothing is written to the terminal and only the run log is kept.
func NewFromConfig(cfg *config.Config, quiet bool) (*slog.Logger, func() error, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", OutputPaths: []string{"stderr"}})
	}
	outputs := []string{"stderr"}
	if quiet {
		outputs = nil
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		RunLogPath:  cfg.Logging.RunLog,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func openWriters(outputPaths []string) (io.Writer, []*os.File, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer
	var files []*os.File

	for _, path := range outputPaths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			file, err := openLogFile(trimmed)
			if err != nil {
				for _, f := range files {
					_ = f.Close()
				}
				return nil, nil, err
			}
			files = append(files, file)
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return nil, files, nil
	case 1:
		return writers[0], files, nil
	default:
		return io.MultiWriter(writers...), files, nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
