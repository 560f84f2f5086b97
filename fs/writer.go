package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/inlay"
)

// Ensure Writer implements inlay.FragmentWriter at compile time.
var _ inlay.FragmentWriter = (*Writer)(nil)

// Writer writes fragments with atomic replace semantics: content goes to a
// temporary file next to the target, which is then renamed over it. A
// reader never observes a partially written fragment.
type Writer struct {
	perm iofs.FileMode
}

// NewWriter creates a new Writer producing files with mode 0644.
func NewWriter() *Writer {
	return &Writer{perm: 0644}
}

// WriteFragment writes content to path unless path already holds identical
// content.
func (w *Writer) WriteFragment(ctx context.Context, path, content string) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil {
		if string(existing) == content {
			return false, nil
		}
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return false, inlay.Errorf(inlay.EWRITE, "read existing %q: %v", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, inlay.Errorf(inlay.EWRITE, "create directory %q: %v", dir, err)
	}

	tmp, err := os.CreateTemp(dir, TempPrefix(path)+"*")
	if err != nil {
		return false, inlay.Errorf(inlay.EWRITE, "create temporary file in %q: %v", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return false, inlay.Errorf(inlay.EWRITE, "write %q: %v", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return false, inlay.Errorf(inlay.EWRITE, "close %q: %v", tmpName, err)
	}
	if err := os.Chmod(tmpName, w.perm); err != nil {
		_ = os.Remove(tmpName)
		return false, inlay.Errorf(inlay.EWRITE, "chmod %q: %v", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return false, inlay.Errorf(inlay.EWRITE, "replace %q: %v", path, err)
	}
	return true, nil
}

// TempPrefix returns the name prefix of temporary files created while
// writing path.
func TempPrefix(path string) string {
	return "." + filepath.Base(path) + ".tmp-"
}
