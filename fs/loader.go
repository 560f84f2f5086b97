// Package fs provides filesystem access to build outputs and fragments.
package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/fwojciec/inlay"
)

// Ensure Loader implements inlay.BuildLoader at compile time.
var _ inlay.BuildLoader = (*Loader)(nil)

// Loader reads build output directories from disk.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the HTML document and lists every file under root. File
// contents are not read here; BuildOutput.ReadFile goes to disk on each call.
func (l *Loader) Load(ctx context.Context, root, htmlPath string) (*inlay.BuildOutput, error) {
	info, err := os.Stat(root)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, inlay.Errorf(inlay.EMISSING, "build output %q not found", root)
	} else if err != nil {
		return nil, inlay.Errorf(inlay.EMISSING, "build output %q: %v", root, err)
	}
	if !info.IsDir() {
		return nil, inlay.Errorf(inlay.EMISSING, "build output %q is not a directory", root)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(htmlPath)))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, inlay.Errorf(inlay.EMISSING, "html document %q not found in %q", htmlPath, root)
	} else if err != nil {
		return nil, inlay.Errorf(inlay.EMISSING, "html document %q: %v", htmlPath, err)
	}

	fsys := os.DirFS(root)
	files, err := listFiles(fsys)
	if err != nil {
		return nil, inlay.Errorf(inlay.EMISSING, "list build output %q: %v", root, err)
	}

	return &inlay.BuildOutput{
		Root:     root,
		HTMLPath: filepath.ToSlash(htmlPath),
		HTML:     string(data),
		Files:    files,
		FS:       fsys,
	}, nil
}

func listFiles(fsys iofs.FS) ([]inlay.File, error) {
	var files []inlay.File
	err := iofs.WalkDir(fsys, ".", func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, inlay.File{
			Path:        p,
			ContentType: ContentType(p),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ContentType infers a content type from a file extension.
func ContentType(p string) string {
	switch ext := path.Ext(p); ext {
	case ".js", ".mjs", ".cjs":
		return "text/javascript"
	case ".css":
		return "text/css"
	case ".html", ".htm":
		return "text/html"
	case "":
		return "application/octet-stream"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
