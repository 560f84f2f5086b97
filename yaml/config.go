// Package yaml loads widget configuration files.
package yaml

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/inlay"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "inlay.yaml"

// LoadConfig reads a configuration file. Widget roots are resolved against
// the file's directory so a config can be run from anywhere.
func LoadConfig(path string) (*inlay.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, inlay.Errorf(inlay.EMISSING, "config file %q not found", path)
	} else if err != nil {
		return nil, inlay.Errorf(inlay.EINVALID, "failed to read config file: %v", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, inlay.Errorf(inlay.EINVALID, "resolve config directory: %v", err)
	}
	for _, w := range cfg.Widgets {
		w.Resolve(dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig decodes configuration YAML. Unknown fields are rejected so
// typos in rule definitions surface instead of being ignored.
func ParseConfig(data []byte) (*inlay.Config, error) {
	cfg := &inlay.Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, inlay.Errorf(inlay.EINVALID, "failed to parse config file: %v", err)
	}

	for i, w := range cfg.Widgets {
		if w == nil {
			return nil, inlay.Errorf(inlay.EINVALID, "widget %d is empty", i)
		}
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating parent directories.
func SaveConfig(path string, cfg *inlay.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return inlay.Errorf(inlay.EWRITE, "failed to create config directory: %v", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return inlay.Errorf(inlay.EINTERNAL, "failed to marshal config: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return inlay.Errorf(inlay.EWRITE, "failed to write config file: %v", err)
	}
	return nil
}
