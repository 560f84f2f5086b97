package main

import (
	"fmt"

	"github.com/fwojciec/inlay"
	"github.com/fwojciec/inlay/fsnotify"
	"github.com/fwojciec/inlay/yaml"
)

// Run executes the watch command. It returns when the context is cancelled.
func (c *WatchCmd) Run(deps *Dependencies) error {
	widgets := []*inlay.Widget{c.Widget()}
	if c.Config != "" {
		cfg, err := yaml.LoadConfig(c.Config)
		if err != nil {
			return err
		}
		widgets = cfg.Widgets
	}

	w := fsnotify.NewWatcher(deps.Extractor, deps.Logger)
	w.Debounce = c.Debounce
	w.OnResult = func(res *inlay.Result) {
		fmt.Fprintln(deps.Stdout, res.Summary())
	}

	return w.Watch(deps.Ctx, widgets)
}
