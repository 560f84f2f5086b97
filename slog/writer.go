package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/inlay"
)

// Ensure LoggingWriter implements inlay.FragmentWriter.
var _ inlay.FragmentWriter = (*LoggingWriter)(nil)

// LoggingWriter wraps a FragmentWriter with debug logging.
type LoggingWriter struct {
	next   inlay.FragmentWriter
	logger *slog.Logger
}

// NewLoggingWriter creates a new LoggingWriter.
func NewLoggingWriter(next inlay.FragmentWriter, logger *slog.Logger) *LoggingWriter {
	return &LoggingWriter{next: next, logger: logger}
}

// WriteFragment delegates to the wrapped writer and logs the write.
func (w *LoggingWriter) WriteFragment(ctx context.Context, path, content string) (written bool, err error) {
	defer func(begin time.Time) {
		w.logger.Debug("write fragment",
			"path", path,
			"bytes", len(content),
			"written", written,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteFragment(ctx, path, content)
}
