package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/inlay"
)

// Ensure LoggingDetector implements inlay.PresetDetector.
var _ inlay.PresetDetector = (*LoggingDetector)(nil)

// LoggingDetector wraps a PresetDetector and logs the preset it picks.
type LoggingDetector struct {
	next   inlay.PresetDetector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next inlay.PresetDetector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Detect delegates to the wrapped detector and logs the result.
func (d *LoggingDetector) Detect(html string) inlay.Preset {
	begin := time.Now()
	preset := d.next.Detect(html)
	d.logger.Info("preset detection",
		"preset", string(preset),
		"duration", time.Since(begin),
	)
	return preset
}
