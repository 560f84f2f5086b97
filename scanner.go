package inlay

import "strings"

// Attr is an HTML attribute with its unescaped value.
type Attr struct {
	Key string
	Val string
}

// Span is an element located in an HTML document, kept as verbatim source
// text.
type Span struct {
	// Tag is the lowercase element name.
	Tag string

	// Offset is the byte offset of the start tag in the document. It
	// identifies the element across rules.
	Offset int

	// StartTag is the raw start tag, including attributes.
	StartTag string

	// Inner is the raw source between start and end tag.
	Inner string

	// EndTag is the raw end tag. Empty for void or self-closing elements and
	// for elements left open in the source.
	EndTag string

	// SelfClosing is true for start tags written as "<tag ... />".
	SelfClosing bool

	Attrs []Attr
}

// Raw returns the element exactly as written in the source.
func (s Span) Raw() string {
	return s.StartTag + s.Inner + s.EndTag
}

// Attr returns the value of the named attribute.
func (s Span) Attr(key string) (string, bool) {
	for _, a := range s.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Empty returns the element without its content: the raw start tag followed
// by the raw end tag, or a synthesized end tag when the source has none.
func (s Span) Empty() string {
	start := s.StartTag
	if s.SelfClosing {
		start = strings.TrimSuffix(start, "/>") + ">"
	}
	end := s.EndTag
	if end == "" {
		end = "</" + s.Tag + ">"
	}
	return start + end
}

// Scanner selects elements from HTML source.
type Scanner interface {
	// Select returns the elements of doc matching the CSS selector, in
	// document order. Returns EINVALID for a malformed selector.
	Select(doc, selector string) ([]Span, error)

	// ShellTags returns the document-shell tags (doctype, html, head, body)
	// present in s, in order of first appearance.
	ShellTags(s string) []string
}
