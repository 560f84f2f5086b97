package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/inlay"
	"github.com/fwojciec/inlay/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under dir from a path → content map.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func TestLoader_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ inlay.BuildLoader = fs.NewLoader()
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("reads html and lists files sorted by path", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"index.html":         "<html></html>",
			"assets/index-b2.js": "b",
			"assets/index-a1.js": "a",
			"assets/app-x7f.css": ".a{}",
			"images/logo.svg":    "<svg/>",
		})

		out, err := fs.NewLoader().Load(context.Background(), root, "index.html")

		require.NoError(t, err)
		assert.Equal(t, root, out.Root)
		assert.Equal(t, "index.html", out.HTMLPath)
		assert.Equal(t, "<html></html>", out.HTML)

		paths := make([]string, len(out.Files))
		for i, f := range out.Files {
			paths[i] = f.Path
		}
		assert.Equal(t, []string{
			"assets/app-x7f.css",
			"assets/index-a1.js",
			"assets/index-b2.js",
			"images/logo.svg",
			"index.html",
		}, paths)
		assert.Equal(t, "text/css", out.Files[0].ContentType)
		assert.Equal(t, "text/javascript", out.Files[1].ContentType)
		assert.True(t, out.HasFile("images/logo.svg"))
	})

	t.Run("ReadFile returns current bytes on disk", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"index.html":    "<html></html>",
			"assets/app.js": "console.log(1)",
		})

		out, err := fs.NewLoader().Load(context.Background(), root, "index.html")
		require.NoError(t, err)

		writeTree(t, root, map[string]string{"assets/app.js": "console.log(2)"})

		data, err := out.ReadFile("assets/app.js")
		require.NoError(t, err)
		assert.Equal(t, "console.log(2)", string(data))
	})

	t.Run("returns EMISSING when root does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "dist"), "index.html")

		require.Error(t, err)
		assert.Equal(t, inlay.EMISSING, inlay.ErrorCode(err))
	})

	t.Run("returns EMISSING when root is a file", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeTree(t, root, map[string]string{"dist": "not a dir"})

		_, err := fs.NewLoader().Load(context.Background(), filepath.Join(root, "dist"), "index.html")

		require.Error(t, err)
		assert.Equal(t, inlay.EMISSING, inlay.ErrorCode(err))
	})

	t.Run("returns EMISSING when html document is absent", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeTree(t, root, map[string]string{"assets/app.js": "x"})

		_, err := fs.NewLoader().Load(context.Background(), root, "index.html")

		require.Error(t, err)
		assert.Equal(t, inlay.EMISSING, inlay.ErrorCode(err))
		assert.Contains(t, inlay.ErrorMessage(err), "index.html")
	})

	t.Run("returns EMISSING when reading a file that disappeared", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"index.html":    "<html></html>",
			"assets/app.js": "x",
		})
		out, err := fs.NewLoader().Load(context.Background(), root, "index.html")
		require.NoError(t, err)
		require.NoError(t, os.Remove(filepath.Join(root, "assets", "app.js")))

		_, err = out.ReadFile("assets/app.js")

		require.Error(t, err)
		assert.Equal(t, inlay.EMISSING, inlay.ErrorCode(err))
	})
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "assets/index.js", want: "text/javascript"},
		{path: "assets/chunk.mjs", want: "text/javascript"},
		{path: "assets/app.css", want: "text/css"},
		{path: "index.html", want: "text/html"},
		{path: "LICENSE", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, fs.ContentType(tt.path))
		})
	}
}
