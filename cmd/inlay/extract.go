package main

import "fmt"

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	res, err := deps.Extractor.Extract(deps.Ctx, c.Widget())
	if err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout, res.Summary())
	return nil
}
