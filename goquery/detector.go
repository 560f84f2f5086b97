package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/inlay"
)

// Ensure Detector implements inlay.PresetDetector at compile time.
var _ inlay.PresetDetector = (*Detector)(nil)

// Detector identifies how a bundler laid out a widget build from its
// generated document.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns PresetChunked when the document loads a script from the
// build directory and PresetInlined otherwise. Scripts served from another
// origin are not part of the build and do not count.
func (d *Detector) Detect(html string) inlay.Preset {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return inlay.PresetInlined
	}

	chunked := false
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if isLocal(src) {
			chunked = true
			return false
		}
		return true
	})
	if chunked {
		return inlay.PresetChunked
	}
	return inlay.PresetInlined
}

// isLocal reports whether ref points into the build rather than at another
// origin.
func isLocal(ref string) bool {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return false
	case strings.HasPrefix(ref, "//"), strings.Contains(ref, "://"):
		return false
	case strings.HasPrefix(ref, "data:"), strings.HasPrefix(ref, "blob:"):
		return false
	}
	return true
}
