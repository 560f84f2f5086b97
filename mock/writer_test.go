package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/inlay"
	"github.com/fwojciec/inlay/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where FragmentWriter is expected
	var _ inlay.FragmentWriter = &mock.FragmentWriter{}
}

func TestFragmentWriter_WriteFragment(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteFragmentFn", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotContent string
		w := &mock.FragmentWriter{
			WriteFragmentFn: func(_ context.Context, path, content string) (bool, error) {
				gotPath, gotContent = path, content
				return true, nil
			},
		}

		written, err := w.WriteFragment(context.Background(), "dist/content.html", "<div id=\"root\"></div>")

		require.NoError(t, err)
		assert.True(t, written)
		assert.Equal(t, "dist/content.html", gotPath)
		assert.Equal(t, "<div id=\"root\"></div>", gotContent)
	})
}

func TestScanner_ShellTags_DefaultsToNone(t *testing.T) {
	t.Parallel()

	s := &mock.Scanner{}

	assert.Nil(t, s.ShellTags("<html>"))
}
