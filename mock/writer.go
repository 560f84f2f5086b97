package mock

import (
	"context"

	"github.com/fwojciec/inlay"
)

var _ inlay.FragmentWriter = (*FragmentWriter)(nil)

// FragmentWriter is a mock implementation of inlay.FragmentWriter.
type FragmentWriter struct {
	WriteFragmentFn func(ctx context.Context, path, content string) (bool, error)
}

func (w *FragmentWriter) WriteFragment(ctx context.Context, path, content string) (bool, error) {
	return w.WriteFragmentFn(ctx, path, content)
}
