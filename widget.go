package inlay

import "path/filepath"

// Defaults for Widget fields.
const (
	DefaultHTML            = "index.html"
	DefaultOutput          = "content.html"
	DefaultAnchor          = "#root"
	DefaultBasePlaceholder = "/__BASE_URL__"
)

// Preset names a built-in rule set.
type Preset string

// Preset constants.
const (
	// PresetInlined fits a single-file build (CSS code splitting disabled,
	// dynamic imports inlined): links, styles and scripts are taken from the
	// generated document.
	PresetInlined Preset = "inlined"

	// PresetChunked fits a build that leaves its script chunk on disk: the
	// stylesheet and first script file are read and wrapped.
	PresetChunked Preset = "chunked"

	// PresetAuto picks PresetInlined or PresetChunked from the generated
	// document at extraction time.
	PresetAuto Preset = "auto"
)

// PresetDetector picks the preset that fits a generated document.
type PresetDetector interface {
	Detect(html string) Preset
}

// Widget is the extraction configuration of one widget build.
type Widget struct {
	Name string `yaml:"name"`

	// Root is the build output directory.
	Root string `yaml:"root"`

	// HTML is the generated document, relative to Root.
	HTML string `yaml:"html,omitempty"`

	// Output is the fragment path. Relative paths resolve against Root.
	Output string `yaml:"output,omitempty"`

	// Anchor is the mount anchor selector used by presets.
	Anchor string `yaml:"anchor,omitempty"`

	// BaseURL is the public location of the widget's assets, used by
	// rewrite rules.
	BaseURL string `yaml:"baseURL,omitempty"`

	// BasePlaceholder is the base the bundler was configured with; rewrite
	// rules replace it with BaseURL.
	BasePlaceholder string `yaml:"basePlaceholder,omitempty"`

	Separator *string `yaml:"separator,omitempty"`

	// Preset supplies rules when Rules is empty.
	Preset Preset `yaml:"preset,omitempty"`

	Rules []Rule `yaml:"rules,omitempty"`
}

// Label returns the widget name, falling back to its root directory.
func (w *Widget) Label() string {
	if w.Name != "" {
		return w.Name
	}
	return filepath.Base(w.Root)
}

// HTMLPath returns the document path relative to Root.
func (w *Widget) HTMLPath() string {
	if w.HTML == "" {
		return DefaultHTML
	}
	return w.HTML
}

// OutputPath returns the fragment path, resolved against Root.
func (w *Widget) OutputPath() string {
	out := w.Output
	if out == "" {
		out = DefaultOutput
	}
	if filepath.IsAbs(out) {
		return filepath.Clean(out)
	}
	return filepath.Join(w.Root, out)
}

// Placeholder returns the bundler base to replace in rewrite rules.
func (w *Widget) Placeholder() string {
	if w.BasePlaceholder == "" {
		return DefaultBasePlaceholder
	}
	return w.BasePlaceholder
}

// FragmentSeparator returns the string joining fragment segments.
func (w *Widget) FragmentSeparator() string {
	if w.Separator == nil {
		return DefaultSeparator
	}
	return *w.Separator
}

// RuleSet returns the configured rules, or the preset's rules when none are
// configured.
func (w *Widget) RuleSet() []Rule {
	if len(w.Rules) > 0 {
		return w.Rules
	}
	anchor := w.Anchor
	if anchor == "" {
		anchor = DefaultAnchor
	}
	return PresetRules(w.Preset, anchor)
}

// Validate returns an error if the widget cannot be extracted.
func (w *Widget) Validate() error {
	if w.Root == "" {
		return Errorf(EINVALID, "widget %q: root required", w.Name)
	}
	if len(w.Rules) == 0 && w.Preset != "" && w.Preset != PresetInlined && w.Preset != PresetChunked && w.Preset != PresetAuto {
		return Errorf(EINVALID, "widget %q: unknown preset %q", w.Label(), w.Preset)
	}

	rules := w.RuleSet()
	if err := ValidateRules(rules); err != nil {
		return err
	}
	for _, r := range rules {
		if r.EffectiveAction() == ActionRewrite && w.BaseURL == "" {
			return RuleErrorf(EINVALID, r.Label(), "widget %q: rewrite rules require a base URL", w.Label())
		}
	}

	if w.OutputPath() == filepath.Join(w.Root, w.HTMLPath()) {
		return Errorf(EINVALID, "widget %q: output would overwrite the html document", w.Label())
	}
	return nil
}

// Resolve anchors a relative Root at dir.
func (w *Widget) Resolve(dir string) {
	if w.Root != "" && !filepath.IsAbs(w.Root) {
		w.Root = filepath.Join(dir, w.Root)
	}
}

// PresetRules returns the rule set of a preset. An empty or unresolved
// preset is PresetInlined.
func PresetRules(p Preset, anchor string) []Rule {
	switch p {
	case PresetChunked:
		return []Rule{
			{Kind: KindStyleFile, Pattern: "assets/*.css"},
			{Kind: KindMountAnchor, Selector: anchor, Required: true},
			{Kind: KindScriptFile, Pattern: "assets/*.js", First: true, Required: true},
		}
	default:
		return []Rule{
			{Kind: KindStylesheetLink},
			{Kind: KindInlineStyle},
			{Kind: KindMountAnchor, Selector: anchor, Required: true},
			{Kind: KindInlineScript},
		}
	}
}

// Config is a set of widgets extracted together.
type Config struct {
	Widgets []*Widget `yaml:"widgets"`
}

// Validate validates every widget and rejects widgets sharing an output.
func (c *Config) Validate() error {
	if len(c.Widgets) == 0 {
		return Errorf(EINVALID, "no widgets configured")
	}

	outputs := make(map[string]string)
	for _, w := range c.Widgets {
		if err := w.Validate(); err != nil {
			return err
		}
		out := w.OutputPath()
		if other, ok := outputs[out]; ok {
			return Errorf(EINVALID, "widgets %q and %q write the same output %q", other, w.Label(), out)
		}
		outputs[out] = w.Label()
	}
	return nil
}
