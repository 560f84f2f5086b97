package mock

import (
	"context"

	"github.com/fwojciec/inlay"
)

var _ inlay.BuildLoader = (*BuildLoader)(nil)

// BuildLoader is a mock implementation of inlay.BuildLoader.
type BuildLoader struct {
	LoadFn func(ctx context.Context, root, htmlPath string) (*inlay.BuildOutput, error)
}

func (l *BuildLoader) Load(ctx context.Context, root, htmlPath string) (*inlay.BuildOutput, error) {
	return l.LoadFn(ctx, root, htmlPath)
}
