package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/inlay"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Extractor inlay.Extractor
	Scanner   inlay.Scanner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Extract ExtractCmd `cmd:"" help:"Extract the fragment of one widget build"`
	Build   BuildCmd   `cmd:"" help:"Extract every widget in a config file"`
	Watch   WatchCmd   `cmd:"" help:"Re-extract widgets whenever their build output changes"`
	Check   CheckCmd   `cmd:"" help:"Verify an existing fragment file"`
}

// WidgetFlags describe a single widget on the command line.
type WidgetFlags struct {
	Root      string `short:"r" default:"dist" help:"Build output directory"`
	HTML      string `default:"index.html" help:"Generated HTML document, relative to root"`
	Out       string `short:"o" default:"content.html" help:"Fragment path, relative to root unless absolute"`
	Preset    string `short:"p" enum:"inlined,chunked,auto" default:"inlined" help:"Rule preset (inlined, chunked, auto)"`
	Anchor    string `short:"a" default:"#root" help:"Mount anchor selector"`
	BaseURL   string `name:"base-url" env:"INLAY_BASE_URL" help:"Public base URL of the widget's assets"`
	Separator string `help:"String joining fragment segments; a newline when unset"`
	Compact   bool   `help:"Join fragment segments with no separator"`
}

// Widget returns the widget the flags describe.
func (f *WidgetFlags) Widget() *inlay.Widget {
	w := &inlay.Widget{
		Root:    f.Root,
		HTML:    f.HTML,
		Output:  f.Out,
		Anchor:  f.Anchor,
		BaseURL: f.BaseURL,
		Preset:  inlay.Preset(f.Preset),
	}
	switch {
	case f.Compact:
		sep := ""
		w.Separator = &sep
	case f.Separator != "":
		sep := f.Separator
		w.Separator = &sep
	}
	return w
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	WidgetFlags `embed:""`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Config      string `short:"f" env:"INLAY_CONFIG" default:"inlay.yaml" help:"Config file listing widgets"`
	Concurrency int    `short:"c" default:"4" help:"Widgets extracted at once"`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	Config   string        `short:"f" env:"INLAY_CONFIG" help:"Config file listing widgets; the widget flags are used when unset"`
	Debounce time.Duration `default:"300ms" help:"Quiet period before re-extracting"`

	WidgetFlags `embed:""`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Path   string `arg:"" help:"Fragment file"`
	Anchor string `short:"a" help:"Require exactly one element matching this selector"`
}
