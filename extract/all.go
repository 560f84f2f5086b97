package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/inlay"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many widgets are extracted at once.
const DefaultConcurrency = 4

// All extracts every widget with ex. Widgets are independent: disjoint build
// roots and outputs, no shared state. Results are returned in widget order.
// The first fatal error cancels the widgets not yet started and is
// returned; widgets already written stay written.
func All(ctx context.Context, ex inlay.Extractor, widgets []*inlay.Widget, concurrency int) ([]*inlay.Result, error) {
	cfg := &inlay.Config{Widgets: widgets}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*inlay.Result, len(widgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, w := range widgets {
		i, w := i, w
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := ex.Extract(gctx, w)
			if err != nil {
				return widgetError(w, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// widgetError attributes err to w.
func widgetError(w *inlay.Widget, err error) error {
	var e *inlay.Error
	if !errors.As(err, &e) {
		return fmt.Errorf("widget %s: %w", w.Label(), err)
	}
	attributed := *e
	if attributed.Widget == "" {
		attributed.Widget = w.Label()
	}
	return &attributed
}
