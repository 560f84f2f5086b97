// Package goquery selects elements from HTML documents with CSS selectors
// and maps them back to their verbatim source text.
package goquery

import (
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/inlay"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ inlay.Scanner = (*Scanner)(nil)

// Scanner matches selectors against the parsed document tree, then returns
// each match as the exact source text the tokenizer saw for it. The tree
// decides what matches; the tokenizer decides what gets copied, so attribute
// quoting, whitespace and raw text survive untouched. Tree nodes are tied to
// source text by the start tag offset, never by position, so elements the
// parser relocates still map to their own bytes.
type Scanner struct{}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Select returns the elements of doc matching selector in source order.
func (s *Scanner) Select(doc, selector string) ([]inlay.Span, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, inlay.Errorf(inlay.EINVALID, "invalid selector %q: %v", selector, err)
	}

	src, err := tokenize(doc)
	if err != nil {
		return nil, err
	}

	root, err := goquery.NewDocumentFromReader(strings.NewReader(src.marked))
	if err != nil {
		return nil, inlay.Errorf(inlay.EINVALID, "failed to parse HTML: %v", err)
	}

	matches := root.FindMatcher(matcher)
	if matches.Length() == 0 {
		return nil, nil
	}

	spans := make([]inlay.Span, 0, matches.Length())
	for _, n := range matches.Nodes {
		e, ok := src.lookup(n)
		if !ok {
			return nil, inlay.Errorf(inlay.EINVALID,
				"selector %q matched a <%s> the parser created with no source text", selector, n.Data)
		}
		spans = append(spans, e.span(doc))
	}

	// The parser may move elements (foster parenting), so tree order is not
	// always source order.
	sort.Slice(spans, func(i, j int) bool { return spans[i].Offset < spans[j].Offset })
	return spans, nil
}

// ShellTags returns the doctype, html, head and body tags present in s.
func (s *Scanner) ShellTags(frag string) []string {
	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	z := html.NewTokenizer(strings.NewReader(frag))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags
		case html.DoctypeToken:
			add("!doctype")
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Html, atom.Head, atom.Body:
				add(string(name))
			}
		}
	}
}

// element records the source offsets of one element.
type element struct {
	tag         string
	start       int // start tag begins
	startEnd    int // start tag ends
	end         int // end tag begins, or where the element stops
	endEnd      int // end tag ends
	closed      bool
	selfClosing bool
	attrs       []inlay.Attr
}

func (e *element) span(doc string) inlay.Span {
	sp := inlay.Span{
		Tag:         e.tag,
		Offset:      e.start,
		StartTag:    doc[e.start:e.startEnd],
		SelfClosing: e.selfClosing,
		Attrs:       e.attrs,
	}
	if e.end > e.startEnd {
		sp.Inner = doc[e.startEnd:e.end]
	}
	if e.closed {
		sp.EndTag = doc[e.end:e.endEnd]
	}
	return sp
}

// offsetAttr carries each start tag's source offset into the parse tree.
const offsetAttr = "data-inlay-source-offset"

// source is a tokenized document.
type source struct {
	// elements maps start tag offsets to elements.
	elements map[int]*element

	// marked is the document with offsetAttr added to every start tag.
	marked string
}

// lookup returns the source element a tree node was parsed from. Nodes the
// parser synthesized (implied tbody, html, head or body) have none.
func (s *source) lookup(n *html.Node) (*element, bool) {
	for _, a := range n.Attr {
		if a.Key != offsetAttr {
			continue
		}
		off, err := strconv.Atoi(a.Val)
		if err != nil {
			return nil, false
		}
		e, ok := s.elements[off]
		return e, ok
	}
	return nil, false
}

// tokenize walks the raw token stream, recording every element's source
// extent, and rewrites the document so the parse tree can be mapped back to
// it by offset.
func tokenize(doc string) (*source, error) {
	src := &source{elements: make(map[int]*element)}
	var open []*element
	var marked strings.Builder
	marked.Grow(len(doc) + len(doc)/4)

	z := html.NewTokenizer(strings.NewReader(doc))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, inlay.Errorf(inlay.EINVALID, "failed to tokenize HTML: %v", err)
			}
			break
		}

		raw := z.Raw()
		begin, finish := offset, offset+len(raw)
		offset = finish

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			e := &element{
				tag:         tok.Data,
				start:       begin,
				startEnd:    finish,
				end:         finish,
				selfClosing: tt == html.SelfClosingTagToken,
			}
			attrs := make([]html.Attribute, 0, len(tok.Attr)+1)
			for _, a := range tok.Attr {
				if a.Key == offsetAttr {
					continue
				}
				e.attrs = append(e.attrs, inlay.Attr{Key: a.Key, Val: a.Val})
				attrs = append(attrs, a)
			}
			src.elements[begin] = e
			if tt == html.StartTagToken && !isVoid(tok.DataAtom) {
				open = append(open, e)
			}

			tok.Attr = append(attrs, html.Attribute{Key: offsetAttr, Val: strconv.Itoa(begin)})
			marked.WriteString(tok.String())

		case html.EndTagToken:
			marked.Write(raw)
			name, _ := z.TagName()
			tag := string(name)
			for i := len(open) - 1; i >= 0; i-- {
				if open[i].tag != tag {
					continue
				}
				// Elements left open inside this one stop here.
				for _, e := range open[i+1:] {
					e.end = begin
				}
				open[i].end = begin
				open[i].endEnd = finish
				open[i].closed = true
				open = open[:i]
				break
			}

		default:
			marked.Write(raw)
		}
	}

	for _, e := range open {
		e.end = len(doc)
	}
	src.marked = marked.String()
	return src, nil
}

func isVoid(a atom.Atom) bool {
	switch a {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
