// Package logutils builds the process-wide zerolog logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Stdout is the file name that sends logs to standard output.
const Stdout = "-"

// Options selects where and how verbosely the root logger writes.
type Options struct {
	// Level is one of debug, info, warn, error, fatal. Empty means info.
	Level string
	// File is the log destination. Stdout writes to standard output and an
	// empty value falls back to DefaultFile.
	File string
	// DefaultFile is used when File is empty. If both are empty, logs go to
	// standard output.
	DefaultFile string
}

// path resolves the destination file, returning "" for standard output.
func (o Options) path() string {
	switch o.File {
	case Stdout:
		return ""
	case "":
		return o.DefaultFile
	default:
		return o.File
	}
}

// New returns a JSON logger and a closer for its file. Log files are opened
// for append so restarts keep earlier history.
func New(opts Options) (zerolog.Logger, func(), error) {
	closer := func() {}

	level := opts.Level
	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var writer io.Writer = os.Stdout
	if file := opts.path(); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("open log file: %w", err)
		}
		closer = func() { _ = f.Close() }
		writer = f
	}

	return zerolog.New(writer).With().Timestamp().Logger().Level(lvl), closer, nil
}
