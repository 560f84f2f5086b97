package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/inlay"
	"github.com/fwojciec/inlay/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `widgets:
  - name: bundled
    root: widgets/bundled_react_test/dist
    preset: inlined
  - name: hello
    root: widgets/react_hello_world/dist
    output: ../content.html
    anchor: hello-world-widget
    baseURL: https://cdn.example.com/hello
    separator: ""
    rules:
      - kind: style-file
        pattern: assets/*.css
      - kind: mount-anchor
        selector: hello-world-widget
        required: true
      - name: chunk
        kind: script-file
        pattern: assets/*.js
        first: true
        attrs:
          type: module
`

func TestParseConfig(t *testing.T) {
	t.Parallel()

	t.Run("decodes widgets and rules", func(t *testing.T) {
		t.Parallel()

		cfg, err := yaml.ParseConfig([]byte(sampleConfig))

		require.NoError(t, err)
		require.Len(t, cfg.Widgets, 2)

		bundled := cfg.Widgets[0]
		assert.Equal(t, "bundled", bundled.Name)
		assert.Equal(t, inlay.PresetInlined, bundled.Preset)
		assert.Nil(t, bundled.Separator)

		hello := cfg.Widgets[1]
		assert.Equal(t, "https://cdn.example.com/hello", hello.BaseURL)
		require.NotNil(t, hello.Separator)
		assert.Equal(t, "", *hello.Separator)
		require.Len(t, hello.Rules, 3)
		assert.Equal(t, inlay.KindMountAnchor, hello.Rules[1].Kind)
		assert.True(t, hello.Rules[1].Required)
		assert.Equal(t, "chunk", hello.Rules[2].Label())
		assert.True(t, hello.Rules[2].First)
		assert.Equal(t, map[string]string{"type": "module"}, hello.Rules[2].Attrs)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseConfig([]byte("widgets:\n  - root: dist\n    requird: true\n"))

		require.Error(t, err)
		assert.Equal(t, inlay.EINVALID, inlay.ErrorCode(err))
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseConfig([]byte("widgets: [\n"))

		require.Error(t, err)
		assert.Equal(t, inlay.EINVALID, inlay.ErrorCode(err))
	})

	t.Run("accepts empty document", func(t *testing.T) {
		t.Parallel()

		cfg, err := yaml.ParseConfig(nil)

		require.NoError(t, err)
		assert.Empty(t, cfg.Widgets)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("resolves roots against the config directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "inlay.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))

		cfg, err := yaml.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "widgets", "bundled_react_test", "dist"), cfg.Widgets[0].Root)
		assert.Equal(t, filepath.Join(dir, "widgets", "react_hello_world", "content.html"), cfg.Widgets[1].OutputPath())
	})

	t.Run("returns EMISSING for absent file", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.LoadConfig(filepath.Join(t.TempDir(), "inlay.yaml"))

		require.Error(t, err)
		assert.Equal(t, inlay.EMISSING, inlay.ErrorCode(err))
	})

	t.Run("validates the loaded config", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "inlay.yaml")
		require.NoError(t, os.WriteFile(path, []byte("widgets:\n  - root: a\n  - root: a\n"), 0644))

		_, err := yaml.LoadConfig(path)

		require.Error(t, err)
		assert.Equal(t, inlay.EINVALID, inlay.ErrorCode(err))
	})
}

func TestSaveConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "inlay.yaml")
	cfg := &inlay.Config{Widgets: []*inlay.Widget{
		{Name: "hello", Root: "dist", Preset: inlay.PresetChunked, Anchor: "hello-world-widget"},
	}}

	require.NoError(t, yaml.SaveConfig(path, cfg))

	loaded, err := yaml.LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, loaded.Widgets, 1)
	assert.Equal(t, "hello", loaded.Widgets[0].Name)
	assert.Equal(t, inlay.PresetChunked, loaded.Widgets[0].Preset)
	assert.Equal(t, filepath.Join(dir, "nested", "dist"), loaded.Widgets[0].Root)
}
