// Package extract implements the fragment extractor: it applies a widget's
// rules to its build output and writes the resulting fragment.
package extract

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/inlay"
	"golang.org/x/net/html"
)

// Ensure Extractor implements inlay.Extractor at compile time.
var _ inlay.Extractor = (*Extractor)(nil)

// Extractor builds and persists widget fragments.
type Extractor struct {
	Loader  inlay.BuildLoader
	Scanner inlay.Scanner
	Writer  inlay.FragmentWriter

	// Detector resolves PresetAuto. Without one, auto means inlined.
	Detector inlay.PresetDetector
}

// NewExtractor creates a new Extractor.
func NewExtractor(loader inlay.BuildLoader, scanner inlay.Scanner, writer inlay.FragmentWriter) *Extractor {
	return &Extractor{
		Loader:  loader,
		Scanner: scanner,
		Writer:  writer,
	}
}

// Extract loads the widget's build output, assembles the fragment and
// writes it in one step. Nothing is written unless assembly succeeds.
func (e *Extractor) Extract(ctx context.Context, w *inlay.Widget) (*inlay.Result, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	out, err := e.Loader.Load(ctx, w.Root, w.HTMLPath())
	if err != nil {
		return nil, err
	}

	w = e.resolvePreset(w, out)

	frag, warnings, err := Assemble(e.Scanner, out, w)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := frag.String()
	written, err := e.Writer.WriteFragment(ctx, w.OutputPath(), content)
	if err != nil {
		return nil, err
	}

	return &inlay.Result{
		Widget:   w.Label(),
		Output:   w.OutputPath(),
		Fragment: frag,
		Warnings: warnings,
		Digest:   Digest(content),
		Written:  written,
	}, nil
}

// resolvePreset returns w with PresetAuto replaced by the preset that fits
// the loaded document.
func (e *Extractor) resolvePreset(w *inlay.Widget, out *inlay.BuildOutput) *inlay.Widget {
	if w.Preset != inlay.PresetAuto || len(w.Rules) > 0 {
		return w
	}

	resolved := *w
	resolved.Preset = inlay.PresetInlined
	if e.Detector != nil {
		resolved.Preset = e.Detector.Detect(out.HTML)
	}
	return &resolved
}

// Digest returns the hex xxhash of content.
func Digest(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// Assemble applies the widget's rules to out and returns the fragment.
//
// Rules are evaluated in fragment order (styles, mount anchor, scripts).
// Drop rules run first so the elements they consume are unavailable to
// every other rule, and the mount anchor is reserved before anything else is
// emitted so it appears exactly once, in its own slot. An element or file
// already emitted by an earlier rule is never emitted again, nor is anything
// nested inside it. An element enclosing one already used is an error, since
// copying it would repeat that element.
func Assemble(scanner inlay.Scanner, out *inlay.BuildOutput, w *inlay.Widget) (*inlay.Fragment, []inlay.Warning, error) {
	a := &assembler{
		scanner:  scanner,
		out:      out,
		widget:   w,
		files:    make(map[string]bool),
	}

	rules := inlay.SortRules(w.RuleSet())

	for i := range rules {
		if rules[i].EffectiveAction() == inlay.ActionDrop {
			if err := a.drop(&rules[i]); err != nil {
				return nil, nil, err
			}
		}
	}

	for i := range rules {
		if rules[i].Kind == inlay.KindMountAnchor {
			if err := a.reserveAnchor(&rules[i]); err != nil {
				return nil, nil, err
			}
		}
	}

	frag := &inlay.Fragment{Separator: w.FragmentSeparator()}
	for i := range rules {
		r := &rules[i]
		var (
			segs []inlay.Segment
			err  error
		)
		switch {
		case r.EffectiveAction() == inlay.ActionDrop:
			continue
		case r.Kind == inlay.KindMountAnchor:
			if a.anchor != nil {
				segs = []inlay.Segment{{Rule: r.Label(), Text: a.anchor.Empty()}}
			}
		case r.IsFile():
			segs, err = a.wrapFiles(r)
		default:
			segs, err = a.elements(r)
		}
		if err != nil {
			return nil, nil, err
		}
		frag.Segments = append(frag.Segments, segs...)
	}

	content := frag.String()
	if tags := scanner.ShellTags(content); len(tags) > 0 {
		return nil, nil, inlay.Errorf(inlay.EINVALID, "fragment contains document shell tags: %s", strings.Join(tags, ", "))
	}
	if err := a.checkAnchor(content); err != nil {
		return nil, nil, err
	}

	return frag, a.warnings, nil
}

type assembler struct {
	scanner inlay.Scanner
	out     *inlay.BuildOutput
	widget  *inlay.Widget

	// consumed holds the source extents of elements already emitted,
	// dropped or reserved.
	consumed []extent

	// files holds the build files already emitted.
	files map[string]bool

	anchor     *inlay.Span
	anchorRule *inlay.Rule
	warnings   []inlay.Warning
}

// extent is the source range [start, end) of an element, including its
// content and end tag.
type extent struct {
	start, end int
}

func extentOf(sp inlay.Span) extent {
	return extent{start: sp.Offset, end: sp.Offset + len(sp.Raw())}
}

func (e extent) contains(o extent) bool {
	return e.start <= o.start && o.end <= e.end
}

func (e extent) overlaps(o extent) bool {
	return e.start < o.end && o.start < e.end
}

// used reports whether sp lies inside an element already consumed.
func (a *assembler) used(sp inlay.Span) bool {
	x := extentOf(sp)
	for _, c := range a.consumed {
		if c.contains(x) {
			return true
		}
	}
	return false
}

// claim consumes sp for emission. It returns false when sp is already part
// of a consumed element and fails when sp would repeat one.
func (a *assembler) claim(r *inlay.Rule, sp inlay.Span) (bool, error) {
	if a.used(sp) {
		return false, nil
	}

	x := extentOf(sp)
	for _, c := range a.consumed {
		if x.overlaps(c) {
			what := "an element used by another rule"
			if a.anchor != nil && c == extentOf(*a.anchor) {
				what = "the mount anchor"
			}
			return false, inlay.RuleErrorf(inlay.EINVALID, r.Label(),
				"<%s> at offset %d encloses %s", sp.Tag, sp.Offset, what)
		}
	}

	a.consumed = append(a.consumed, x)
	return true, nil
}

// checkAnchor verifies the assembled fragment holds the mount anchor once.
func (a *assembler) checkAnchor(content string) error {
	if a.anchor == nil || a.anchorRule == nil {
		return nil
	}

	spans, err := a.scanner.Select(content, a.anchorRule.EffectiveSelector())
	if err != nil {
		return inlay.RuleErrorf(inlay.EINVALID, a.anchorRule.Label(), "verify mount anchor: %s", inlay.ErrorMessage(err))
	}
	if len(spans) > 1 {
		return inlay.RuleErrorf(inlay.EINVALID, a.anchorRule.Label(),
			"fragment contains %d elements matching %q, want exactly one", len(spans), a.anchorRule.EffectiveSelector())
	}
	return nil
}

// unmatched records a rule that matched nothing.
func (a *assembler) unmatched(r *inlay.Rule, what string) error {
	if r.Required {
		return inlay.RuleErrorf(inlay.EUNMATCHED, r.Label(), "required rule matched no %s", what)
	}
	a.warnings = append(a.warnings, inlay.Warning{
		Rule:    r.Label(),
		Message: "matched no " + what,
	})
	return nil
}

func (a *assembler) selectSpans(r *inlay.Rule) ([]inlay.Span, error) {
	spans, err := a.scanner.Select(a.out.HTML, r.EffectiveSelector())
	if err != nil {
		if e, ok := err.(*inlay.Error); ok && e.Rule == "" {
			e.Rule = r.Label()
		}
		return nil, err
	}
	return spans, nil
}

func (a *assembler) drop(r *inlay.Rule) error {
	spans, err := a.selectSpans(r)
	if err != nil {
		return err
	}
	if len(spans) == 0 {
		return a.unmatched(r, "elements")
	}
	for _, sp := range spans {
		if !a.used(sp) {
			a.consumed = append(a.consumed, extentOf(sp))
		}
	}
	return nil
}

func (a *assembler) reserveAnchor(r *inlay.Rule) error {
	spans, err := a.selectSpans(r)
	if err != nil {
		return err
	}

	var available []inlay.Span
	for _, sp := range spans {
		if !a.used(sp) {
			available = append(available, sp)
		}
	}
	if len(available) == 0 {
		return a.unmatched(r, "mount anchor")
	}
	if len(available) > 1 {
		a.warnings = append(a.warnings, inlay.Warning{
			Rule:    r.Label(),
			Message: fmt.Sprintf("selector %q matched %d elements; using the first", r.EffectiveSelector(), len(available)),
		})
	}

	anchor := available[0]
	a.anchor = &anchor
	a.anchorRule = r
	a.consumed = append(a.consumed, extentOf(anchor))
	return nil
}

func (a *assembler) elements(r *inlay.Rule) ([]inlay.Segment, error) {
	spans, err := a.selectSpans(r)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return nil, a.unmatched(r, "elements")
	}

	var segs []inlay.Segment
	for _, sp := range spans {
		ok, err := a.claim(r, sp)
		if err != nil {
			return nil, err
		} else if !ok {
			continue
		}

		text, err := a.render(r, sp)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		segs = append(segs, inlay.Segment{Rule: r.Label(), Text: text})
	}
	return segs, nil
}

// render produces the fragment text of one matched element.
func (a *assembler) render(r *inlay.Rule, sp inlay.Span) (string, error) {
	switch r.EffectiveAction() {
	case inlay.ActionRewrite:
		key := urlAttr(sp.Tag)
		ref, ok := sp.Attr(key)
		if !ok || key == "" {
			return sp.Raw(), nil
		}
		attrs := setAttr(sp.Attrs, key, a.rewriteURL(ref))
		return startTag(sp.Tag, attrs, nil) + sp.Inner + sp.EndTag, nil

	case inlay.ActionInline:
		key := urlAttr(sp.Tag)
		ref, ok := sp.Attr(key)
		if !ok || key == "" {
			return sp.Raw(), nil
		}
		rel, err := a.assetPath(r, ref)
		if err != nil {
			return "", err
		}
		if a.files[rel] {
			return "", nil
		}
		a.files[rel] = true

		switch sp.Tag {
		case "link":
			var attrs []inlay.Attr
			if media, ok := sp.Attr("media"); ok {
				attrs = append(attrs, inlay.Attr{Key: "media", Val: media})
			}
			return a.wrap(r, "style", rel, attrs)
		default:
			attrs := withoutAttrs(sp.Attrs, "src", "integrity", "crossorigin", "async", "defer")
			return a.wrap(r, sp.Tag, rel, attrs)
		}

	default:
		return sp.Raw(), nil
	}
}

func (a *assembler) wrapFiles(r *inlay.Rule) ([]inlay.Segment, error) {
	files, err := Match(a.out, r.Pattern)
	if err != nil {
		return nil, inlay.RuleErrorf(inlay.EINVALID, r.Label(), "%s", inlay.ErrorMessage(err))
	}
	if len(files) == 0 {
		return nil, a.unmatched(r, "files")
	}
	if r.First {
		files = files[:1]
	}

	tag := "script"
	if r.Kind == inlay.KindStyleFile {
		tag = "style"
	}

	var segs []inlay.Segment
	for _, f := range files {
		if a.files[f.Path] {
			continue
		}
		a.files[f.Path] = true

		text, err := a.wrap(r, tag, f.Path, nil)
		if err != nil {
			return nil, err
		}
		segs = append(segs, inlay.Segment{Rule: r.Label(), Text: text})
	}
	return segs, nil
}

// wrap reads a build file and wraps its current content in a fresh tag.
func (a *assembler) wrap(r *inlay.Rule, tag, rel string, attrs []inlay.Attr) (string, error) {
	data, err := a.out.ReadFile(rel)
	if err != nil {
		return "", inlay.RuleErrorf(inlay.EMISSING, r.Label(), "%s", inlay.ErrorMessage(err))
	}

	content := string(data)
	if strings.Contains(strings.ToLower(content), "</"+tag) {
		return "", inlay.RuleErrorf(inlay.EINVALID, r.Label(), "%q contains a closing </%s> tag and cannot be wrapped", rel, tag)
	}
	return startTag(tag, attrs, r.Attrs) + content + "</" + tag + ">", nil
}

// assetPath resolves an href or src to a build file path.
func (a *assembler) assetPath(r *inlay.Rule, ref string) (string, error) {
	p := ref
	if ph := a.widget.Placeholder(); strings.HasPrefix(p, ph) {
		p = strings.TrimPrefix(p, ph)
	} else if base := a.widget.BaseURL; base != "" && strings.HasPrefix(p, base) {
		p = strings.TrimPrefix(p, base)
	}

	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", inlay.RuleErrorf(inlay.EINVALID, r.Label(), "cannot inline external reference %q", ref)
	}

	rel := path.Clean(strings.TrimPrefix(u.Path, "/"))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", inlay.RuleErrorf(inlay.EINVALID, r.Label(), "reference %q points outside the build output", ref)
	}
	if !a.out.HasFile(rel) {
		return "", inlay.RuleErrorf(inlay.EMISSING, r.Label(), "%q referenced by %q not found in build output", rel, ref)
	}
	return rel, nil
}

// rewriteURL points a bundler-relative reference at the widget's base URL.
// Absolute and fragment-only references are returned unchanged.
func (a *assembler) rewriteURL(ref string) string {
	base := strings.TrimSuffix(a.widget.BaseURL, "/")
	if ph := a.widget.Placeholder(); strings.HasPrefix(ref, ph) {
		return base + "/" + strings.TrimPrefix(strings.TrimPrefix(ref, ph), "/")
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "#") {
		return ref
	}
	return base + "/" + strings.TrimPrefix(ref, "./")
}

// Match returns the files of out matching a doublestar pattern, sorted by
// path regardless of how the directory was listed.
func Match(out *inlay.BuildOutput, pattern string) ([]inlay.File, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, inlay.Errorf(inlay.EINVALID, "invalid file pattern %q", pattern)
	}

	var matched []inlay.File
	for _, f := range out.Files {
		if doublestar.MatchUnvalidated(pattern, f.Path) {
			matched = append(matched, f)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Path < matched[j].Path })
	return matched, nil
}

func urlAttr(tag string) string {
	switch tag {
	case "link":
		return "href"
	case "script":
		return "src"
	}
	return ""
}

func setAttr(attrs []inlay.Attr, key, val string) []inlay.Attr {
	out := make([]inlay.Attr, len(attrs))
	copy(out, attrs)
	for i := range out {
		if out[i].Key == key {
			out[i].Val = val
			return out
		}
	}
	return append(out, inlay.Attr{Key: key, Val: val})
}

func withoutAttrs(attrs []inlay.Attr, keys ...string) []inlay.Attr {
	var out []inlay.Attr
	for _, at := range attrs {
		drop := false
		for _, k := range keys {
			if at.Key == k {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, at)
		}
	}
	return out
}

// startTag renders a start tag. Extra attributes override existing ones and
// are appended in key order so output stays deterministic.
func startTag(tag string, attrs []inlay.Attr, extra map[string]string) string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = setAttr(attrs, k, extra[k])
	}

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	for _, at := range attrs {
		b.WriteString(" ")
		b.WriteString(at.Key)
		if at.Val != "" {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(at.Val))
			b.WriteString(`"`)
		}
	}
	b.WriteString(">")
	return b.String()
}
