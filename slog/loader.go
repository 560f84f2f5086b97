package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/inlay"
)

// Ensure LoggingLoader implements inlay.BuildLoader.
var _ inlay.BuildLoader = (*LoggingLoader)(nil)

// LoggingLoader wraps a BuildLoader with debug logging.
type LoggingLoader struct {
	next   inlay.BuildLoader
	logger *slog.Logger
}

// NewLoggingLoader creates a new LoggingLoader.
func NewLoggingLoader(next inlay.BuildLoader, logger *slog.Logger) *LoggingLoader {
	return &LoggingLoader{next: next, logger: logger}
}

// Load delegates to the wrapped loader and logs the build it found.
func (l *LoggingLoader) Load(ctx context.Context, root, htmlPath string) (out *inlay.BuildOutput, err error) {
	defer func(begin time.Time) {
		var bytes, files int
		if out != nil {
			bytes, files = len(out.HTML), len(out.Files)
		}
		l.logger.Debug("load build",
			"root", root,
			"html", htmlPath,
			"bytes", bytes,
			"files", files,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Load(ctx, root, htmlPath)
}
