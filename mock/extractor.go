package mock

import (
	"context"

	"github.com/fwojciec/inlay"
)

var _ inlay.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of inlay.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, w *inlay.Widget) (*inlay.Result, error)
}

func (e *Extractor) Extract(ctx context.Context, w *inlay.Widget) (*inlay.Result, error) {
	return e.ExtractFn(ctx, w)
}
