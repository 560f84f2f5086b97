package inlay

import (
	"context"
	"io/fs"
)

// File is one emitted file of a build.
type File struct {
	// Path is relative to the build root, slash separated.
	Path string

	// ContentType is inferred from the file extension.
	ContentType string
}

// BuildOutput is the artifact set produced by one run of the upstream
// bundler. It is read-only to the extractor.
type BuildOutput struct {
	// Root is the build output directory.
	Root string

	// HTMLPath is the document path relative to Root.
	HTMLPath string

	// HTML is the text of the generated document.
	HTML string

	// Files lists every emitted file, sorted by path.
	Files []File

	// FS serves file contents. Reads go to the underlying storage on every
	// call so file rules always see the current bytes.
	FS fs.FS
}

// ReadFile returns the current content of the file at rel.
func (b *BuildOutput) ReadFile(rel string) ([]byte, error) {
	data, err := fs.ReadFile(b.FS, rel)
	if err != nil {
		return nil, Errorf(EMISSING, "build file %q: %v", rel, err)
	}
	return data, nil
}

// HasFile reports whether rel is one of the emitted files.
func (b *BuildOutput) HasFile(rel string) bool {
	for _, f := range b.Files {
		if f.Path == rel {
			return true
		}
	}
	return false
}

// BuildLoader reads a completed build output directory.
type BuildLoader interface {
	// Load returns the build output rooted at root with its HTML document
	// at htmlPath. Returns EMISSING if root or the document does not exist.
	Load(ctx context.Context, root, htmlPath string) (*BuildOutput, error)
}
