// Package slog decorates inlay services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/inlay"
)

// Ensure LoggingExtractor implements inlay.Extractor.
var _ inlay.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor and logs each extraction and its
// warnings.
type LoggingExtractor struct {
	next   inlay.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next inlay.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(ctx context.Context, w *inlay.Widget) (res *inlay.Result, err error) {
	defer func(begin time.Time) {
		if err != nil {
			attrs := []any{
				"widget", w.Label(),
				"code", inlay.ErrorCode(err),
				"duration", time.Since(begin),
				"err", inlay.ErrorMessage(err),
			}
			if rule := inlay.ErrorRule(err); rule != "" {
				attrs = append(attrs, "rule", rule)
			}
			e.logger.Error("extract", attrs...)
			return
		}

		for _, warn := range res.Warnings {
			e.logger.Warn(warn.Message, "widget", w.Label(), "rule", warn.Rule)
		}
		e.logger.Info("extract",
			"widget", w.Label(),
			"output", res.Output,
			"segments", res.Fragment.Len(),
			"warnings", len(res.Warnings),
			"digest", res.Digest,
			"written", res.Written,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return e.next.Extract(ctx, w)
}
