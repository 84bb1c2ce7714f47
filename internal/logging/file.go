package logging

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures a size-rotated log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewRotatingWriter returns a writer that rotates Path by size.
func NewRotatingWriter(o FileOptions) io.WriteCloser {
	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = 10
	}
	if o.MaxBackups <= 0 {
		o.MaxBackups = 3
	}
	if o.MaxAgeDays <= 0 {
		o.MaxAgeDays = 28
	}
	return &lumberjack.Logger{
		Filename:   o.Path,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
		Compress:   true,
	}
}

// NewFileLogger logs text records to a rotating file. When mirror is non-nil
// records are also written there (the CLI passes os.Stderr in verbose mode).
func NewFileLogger(o FileOptions, level slog.Level, mirror io.Writer) (*SlogLogger, io.Closer) {
	w := NewRotatingWriter(o)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if mirror != nil {
		h = NewMultiHandler(h, slog.NewTextHandler(mirror, opts))
	}
	return NewSlogLogger(slog.New(h)), w
}
