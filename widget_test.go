package inlay_test

import (
	"path/filepath"
	"testing"

	"github.com/fwojciec/inlay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidget_Defaults(t *testing.T) {
	t.Parallel()

	w := &inlay.Widget{Root: "dist"}

	assert.Equal(t, "dist", w.Label())
	assert.Equal(t, "index.html", w.HTMLPath())
	assert.Equal(t, filepath.Join("dist", "content.html"), w.OutputPath())
	assert.Equal(t, "/__BASE_URL__", w.Placeholder())
	assert.Equal(t, "\n", w.FragmentSeparator())
	assert.Equal(t, inlay.PresetRules(inlay.PresetInlined, "#root"), w.RuleSet())
}

func TestWidget_OutputPath(t *testing.T) {
	t.Parallel()

	t.Run("relative output resolves against root", func(t *testing.T) {
		t.Parallel()

		w := &inlay.Widget{Root: "dist", Output: "../content.html"}

		assert.Equal(t, "content.html", w.OutputPath())
	})

	t.Run("absolute output is kept", func(t *testing.T) {
		t.Parallel()

		abs := filepath.Join(t.TempDir(), "fragment.html")
		w := &inlay.Widget{Root: "dist", Output: abs}

		assert.Equal(t, abs, w.OutputPath())
	})
}

func TestWidget_RuleSet(t *testing.T) {
	t.Parallel()

	t.Run("configured rules win over preset", func(t *testing.T) {
		t.Parallel()

		rules := []inlay.Rule{{Kind: inlay.KindInlineStyle}}
		w := &inlay.Widget{Root: "dist", Preset: inlay.PresetChunked, Rules: rules}

		assert.Equal(t, rules, w.RuleSet())
	})

	t.Run("chunked preset defaults the anchor to #root", func(t *testing.T) {
		t.Parallel()

		w := &inlay.Widget{Root: "dist", Preset: inlay.PresetChunked}

		rules := w.RuleSet()

		require.Len(t, rules, 3)
		assert.Equal(t, inlay.KindMountAnchor, rules[1].Kind)
		assert.Equal(t, inlay.DefaultAnchor, rules[1].Selector)
		assert.Equal(t, "assets/*.css", rules[0].Pattern)
	})

	t.Run("chunked preset uses the widget anchor", func(t *testing.T) {
		t.Parallel()

		w := &inlay.Widget{Root: "dist", Preset: inlay.PresetChunked, Anchor: "hello-world-widget"}

		rules := w.RuleSet()

		require.Len(t, rules, 3)
		assert.Equal(t, inlay.KindStyleFile, rules[0].Kind)
		assert.Equal(t, "hello-world-widget", rules[1].Selector)
		assert.True(t, rules[1].Required)
		assert.Equal(t, "assets/*.js", rules[2].Pattern)
		assert.True(t, rules[2].First)
	})
}

func TestWidget_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		widget  inlay.Widget
		wantErr bool
	}{
		{name: "defaults", widget: inlay.Widget{Root: "dist"}},
		{name: "missing root", widget: inlay.Widget{}, wantErr: true},
		{name: "unknown preset", widget: inlay.Widget{Root: "dist", Preset: "spa"}, wantErr: true},
		{name: "auto preset", widget: inlay.Widget{Root: "dist", Preset: inlay.PresetAuto}},
		{
			name: "rewrite without base url",
			widget: inlay.Widget{Root: "dist", Rules: []inlay.Rule{
				{Kind: inlay.KindStylesheetLink, Action: inlay.ActionRewrite},
			}},
			wantErr: true,
		},
		{
			name: "rewrite with base url",
			widget: inlay.Widget{Root: "dist", BaseURL: "https://cdn.example.com", Rules: []inlay.Rule{
				{Kind: inlay.KindStylesheetLink, Action: inlay.ActionRewrite},
			}},
		},
		{name: "output overwrites html", widget: inlay.Widget{Root: "dist", Output: "index.html"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.widget.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, inlay.EINVALID, inlay.ErrorCode(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestWidget_Resolve(t *testing.T) {
	t.Parallel()

	w := &inlay.Widget{Root: "widgets/hello/dist"}
	w.Resolve("/srv/project")

	assert.Equal(t, filepath.Join("/srv/project", "widgets/hello/dist"), w.Root)

	abs := &inlay.Widget{Root: "/abs/dist"}
	abs.Resolve("/srv/project")

	assert.Equal(t, "/abs/dist", abs.Root)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty config", func(t *testing.T) {
		t.Parallel()

		err := (&inlay.Config{}).Validate()

		assert.Equal(t, inlay.EINVALID, inlay.ErrorCode(err))
	})

	t.Run("rejects shared output", func(t *testing.T) {
		t.Parallel()

		cfg := &inlay.Config{Widgets: []*inlay.Widget{
			{Name: "a", Root: "dist"},
			{Name: "b", Root: "dist"},
		}}

		err := cfg.Validate()

		require.Error(t, err)
		assert.Equal(t, inlay.EINVALID, inlay.ErrorCode(err))
		assert.Contains(t, inlay.ErrorMessage(err), "same output")
	})

	t.Run("accepts disjoint widgets", func(t *testing.T) {
		t.Parallel()

		cfg := &inlay.Config{Widgets: []*inlay.Widget{
			{Name: "a", Root: "a/dist"},
			{Name: "b", Root: "b/dist", Preset: inlay.PresetChunked, Anchor: "hello-world-widget"},
		}}

		assert.NoError(t, cfg.Validate())
	})
}
