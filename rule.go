package inlay

import (
	"sort"
	"strings"
)

// RuleKind identifies what a rule selects from a build output.
type RuleKind string

// RuleKind constants.
const (
	KindStylesheetLink RuleKind = "stylesheet-link"
	KindInlineStyle    RuleKind = "inline-style"
	KindMountAnchor    RuleKind = "mount-anchor"
	KindInlineScript   RuleKind = "inline-script"
	KindStyleFile      RuleKind = "style-file"
	KindScriptFile     RuleKind = "script-file"
)

// Action describes what happens to the content a rule selects.
type Action string

// Action constants.
const (
	// ActionVerbatim emits matched elements exactly as written.
	ActionVerbatim Action = "verbatim"

	// ActionWrap wraps file content in a fresh tag.
	ActionWrap Action = "wrap"

	// ActionRewrite rewrites href/src against the widget's base URL.
	ActionRewrite Action = "rewrite"

	// ActionInline replaces a linked stylesheet or external script with the
	// referenced file's content.
	ActionInline Action = "inline"

	// ActionDrop consumes matches without emitting anything.
	ActionDrop Action = "drop"
)

// Position is the slot of a rule's output in the fragment. CSS must precede
// the mount anchor, which must precede scripts.
type Position int

// Position constants, in fragment order.
const (
	PositionStyles Position = iota
	PositionMount
	PositionScripts
)

var kindPositions = map[RuleKind]Position{
	KindStylesheetLink: PositionStyles,
	KindInlineStyle:    PositionStyles,
	KindStyleFile:      PositionStyles,
	KindMountAnchor:    PositionMount,
	KindInlineScript:   PositionScripts,
	KindScriptFile:     PositionScripts,
}

// kindOrder orders kinds within a position.
var kindOrder = map[RuleKind]int{
	KindStylesheetLink: 0,
	KindInlineStyle:    1,
	KindStyleFile:      2,
	KindMountAnchor:    3,
	KindInlineScript:   4,
	KindScriptFile:     5,
}

var kindActions = map[RuleKind][]Action{
	KindStylesheetLink: {ActionVerbatim, ActionRewrite, ActionInline, ActionDrop},
	KindInlineStyle:    {ActionVerbatim, ActionDrop},
	KindMountAnchor:    {ActionVerbatim},
	KindInlineScript:   {ActionVerbatim, ActionRewrite, ActionInline, ActionDrop},
	KindStyleFile:      {ActionWrap},
	KindScriptFile:     {ActionWrap},
}

var defaultSelectors = map[RuleKind]string{
	KindStylesheetLink: "link[rel~=stylesheet]",
	KindInlineStyle:    "style",
	KindMountAnchor:    "#root",
	KindInlineScript:   "script",
}

// Rule describes what to pull out of a build output and how.
type Rule struct {
	// Name identifies the rule in warnings and errors. Defaults to Kind.
	Name string `yaml:"name,omitempty"`

	Kind RuleKind `yaml:"kind"`

	// Selector is a CSS selector for HTML kinds.
	Selector string `yaml:"selector,omitempty"`

	// Pattern is a doublestar pattern relative to the build root for file
	// kinds, e.g. "assets/*.js".
	Pattern string `yaml:"pattern,omitempty"`

	// First keeps only the first matching file, by sorted name.
	First bool `yaml:"first,omitempty"`

	// Required makes a rule that matches nothing fatal.
	Required bool `yaml:"required,omitempty"`

	Action Action `yaml:"action,omitempty"`

	// Attrs are added to tags the rule creates.
	Attrs map[string]string `yaml:"attrs,omitempty"`
}

// Label returns the rule's name, falling back to its kind.
func (r *Rule) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return string(r.Kind)
}

// Position returns the fragment slot of the rule's output.
func (r *Rule) Position() Position {
	return kindPositions[r.Kind]
}

// IsFile reports whether the rule selects emitted files rather than HTML.
func (r *Rule) IsFile() bool {
	return r.Kind == KindStyleFile || r.Kind == KindScriptFile
}

// EffectiveAction returns the rule's action, applying the kind default.
func (r *Rule) EffectiveAction() Action {
	if r.Action != "" {
		return r.Action
	}
	if r.IsFile() {
		return ActionWrap
	}
	return ActionVerbatim
}

// EffectiveSelector returns the rule's selector, applying the kind default.
func (r *Rule) EffectiveSelector() string {
	if r.Selector != "" {
		return r.Selector
	}
	return defaultSelectors[r.Kind]
}

// Validate returns an error if the rule is not usable.
func (r *Rule) Validate() error {
	actions, ok := kindActions[r.Kind]
	if !ok {
		return RuleErrorf(EINVALID, r.Label(), "unknown rule kind %q", r.Kind)
	}

	action := r.EffectiveAction()
	allowed := false
	for _, a := range actions {
		if a == action {
			allowed = true
			break
		}
	}
	if !allowed {
		return RuleErrorf(EINVALID, r.Label(), "action %q not allowed for %s rules", action, r.Kind)
	}

	if r.IsFile() {
		if r.Pattern == "" {
			return RuleErrorf(EINVALID, r.Label(), "%s rule requires a pattern", r.Kind)
		}
		if r.Selector != "" {
			return RuleErrorf(EINVALID, r.Label(), "%s rule does not take a selector", r.Kind)
		}
	} else if r.Pattern != "" {
		return RuleErrorf(EINVALID, r.Label(), "%s rule does not take a pattern", r.Kind)
	}

	if strings.TrimSpace(r.EffectiveSelector()) == "" && !r.IsFile() {
		return RuleErrorf(EINVALID, r.Label(), "selector required")
	}
	return nil
}

// SortRules returns the rules in fragment order: by position, then by kind
// within a position, then by configuration order.
func SortRules(rules []Rule) []Rule {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return kindOrder[sorted[i].Kind] < kindOrder[sorted[j].Kind]
	})
	return sorted
}

// ValidateRules validates each rule and the set as a whole.
func ValidateRules(rules []Rule) error {
	if len(rules) == 0 {
		return Errorf(EINVALID, "at least one rule required")
	}

	anchors := 0
	names := make(map[string]bool)
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return err
		}
		if rules[i].Kind == KindMountAnchor {
			anchors++
		}
		label := rules[i].Label()
		if names[label] && rules[i].Name != "" {
			return RuleErrorf(EINVALID, label, "duplicate rule name")
		}
		names[label] = true
	}
	if anchors > 1 {
		return Errorf(EINVALID, "at most one mount-anchor rule allowed, got %d", anchors)
	}
	return nil
}
