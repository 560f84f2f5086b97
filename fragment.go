package inlay

import (
	"context"
	"fmt"
	"strings"
)

// DefaultSeparator joins fragment segments.
const DefaultSeparator = "\n"

// Segment is one piece of a fragment and the rule that produced it.
type Segment struct {
	Rule string
	Text string
}

// Fragment is the embeddable output: an ordered sequence of segments with no
// document shell.
type Fragment struct {
	Segments  []Segment
	Separator string
}

// String concatenates the segments with the separator.
func (f *Fragment) String() string {
	if f == nil || len(f.Segments) == 0 {
		return ""
	}

	texts := make([]string, len(f.Segments))
	for i, s := range f.Segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, f.Separator)
}

// Len returns the number of segments.
func (f *Fragment) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Segments)
}

// Result reports one completed extraction.
type Result struct {
	Widget   string
	Output   string
	Fragment *Fragment
	Warnings []Warning

	// Digest is the xxhash of the fragment content, hex encoded.
	Digest string

	// Written is false when the output already held identical content.
	Written bool
}

// Summary returns the human-readable completion message.
func (r *Result) Summary() string {
	name := r.Output
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if !r.Written {
		return fmt.Sprintf("✓ Built %s (unchanged)", name)
	}
	return fmt.Sprintf("✓ Built %s", name)
}

// Extractor produces and persists the fragment of one widget.
type Extractor interface {
	// Extract loads the widget's build output, assembles its fragment and
	// writes it. On any fatal error no output is written and a pre-existing
	// output file is left untouched.
	Extract(ctx context.Context, w *Widget) (*Result, error)
}

// FragmentWriter persists fragment content.
type FragmentWriter interface {
	// WriteFragment writes content to path atomically. It returns false
	// without touching the file when path already holds identical content.
	WriteFragment(ctx context.Context, path, content string) (written bool, err error)
}
