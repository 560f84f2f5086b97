package main

import (
	"fmt"

	"github.com/fwojciec/inlay/extract"
	"github.com/fwojciec/inlay/yaml"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	cfg, err := yaml.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	results, err := extract.All(deps.Ctx, deps.Extractor, cfg.Widgets, c.Concurrency)
	if err != nil {
		return err
	}

	for _, res := range results {
		fmt.Fprintln(deps.Stdout, res.Summary())
	}
	return nil
}
