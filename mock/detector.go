package mock

import "github.com/fwojciec/inlay"

var _ inlay.PresetDetector = (*PresetDetector)(nil)

// PresetDetector is a mock implementation of inlay.PresetDetector.
type PresetDetector struct {
	DetectFn func(html string) inlay.Preset
}

func (d *PresetDetector) Detect(html string) inlay.Preset {
	return d.DetectFn(html)
}
