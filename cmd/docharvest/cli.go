package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docharvest"
	"github.com/fwojciec/docharvest/publish"
)

// Batcher runs a batch of package specifications through the pipeline.
type Batcher interface {
	HarvestAll(ctx context.Context, specs []docharvest.PackageSpec) error
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// NewHarvester builds the pipeline for the given output directory.
	NewHarvester func(outputDir string) (Batcher, error)

	Publisher *publish.Publisher
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Harvest HarvestCmd `cmd:"" help:"Harvest package documentation into a local output directory"`
	Publish PublishCmd `cmd:"" help:"Render harvested documentation as a static site"`
}

// HarvestCmd is the "harvest" subcommand. Packages come either from a TOML
// config file or from direct flags; the two modes are mutually exclusive.
type HarvestCmd struct {
	Config    string   `short:"c" type:"path" help:"TOML configuration file path"`
	PyPI      []string `name:"pypi" help:"PyPI package spec (repeatable)"`
	NPM       []string `name:"npm" help:"npm package spec (repeatable)"`
	Cargo     []string `name:"cargo" help:"Cargo package spec (repeatable)"`
	NuGet     []string `name:"nuget" help:"NuGet package spec (repeatable)"`
	URL       []string `name:"url" help:"Direct documentation URL (repeatable)"`
	File      []string `name:"file" help:"Local documentation file (repeatable)"`
	OutputDir string   `short:"o" default:"docs_output" help:"Output directory"`
}

// PublishCmd is the "publish" subcommand.
type PublishCmd struct {
	DataDir   string `short:"d" default:"docs_output" help:"Directory containing harvested documentation"`
	OutputDir string `short:"o" default:"site" help:"Directory where the static site is generated"`
}
