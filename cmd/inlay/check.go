package main

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/inlay"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	if err := c.check(deps); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "✓ %s is a valid fragment\n", filepath.Base(c.Path))
	return nil
}

func (c *CheckCmd) check(deps *Dependencies) error {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, iofs.ErrNotExist) {
		return inlay.Errorf(inlay.EMISSING, "fragment %q not found", c.Path)
	} else if err != nil {
		return inlay.Errorf(inlay.EINTERNAL, "read fragment: %v", err)
	}
	frag := string(data)

	if tags := deps.Scanner.ShellTags(frag); len(tags) > 0 {
		return inlay.Errorf(inlay.EINVALID, "fragment contains document shell tags: %s", strings.Join(tags, ", "))
	}

	if c.Anchor == "" {
		return nil
	}
	spans, err := deps.Scanner.Select(frag, c.Anchor)
	if err != nil {
		return err
	}
	if len(spans) != 1 {
		return inlay.Errorf(inlay.EINVALID, "fragment has %d elements matching %q, want exactly one", len(spans), c.Anchor)
	}
	return nil
}
