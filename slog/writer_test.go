package slog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/inlay/mock"
	inlayslog "github.com/fwojciec/inlay/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingWriter_WriteFragment(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var gotPath, gotContent string
	inner := &mock.FragmentWriter{
		WriteFragmentFn: func(ctx context.Context, path, content string) (bool, error) {
			gotPath, gotContent = path, content
			return false, nil
		},
	}

	w := inlayslog.NewLoggingWriter(inner, debugLogger(&buf))
	written, err := w.WriteFragment(context.Background(), "/dist/content.html", "<div></div>")

	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, "/dist/content.html", gotPath)
	assert.Equal(t, "<div></div>", gotContent)
	output := buf.String()
	assert.Contains(t, output, `msg="write fragment"`)
	assert.Contains(t, output, "path=/dist/content.html")
	assert.Contains(t, output, "bytes=11")
	assert.Contains(t, output, "written=false")
}
