package main

import (
	"fmt"

	"github.com/fwojciec/docharvest"
	"github.com/fwojciec/docharvest/toml"
)

// Run executes the harvest command.
func (c *HarvestCmd) Run(deps *Dependencies) error {
	specs, outputDir, err := c.specs()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docharvest.ErrorMessage(err))
		return err
	}

	harvester, err := deps.NewHarvester(outputDir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docharvest.ErrorMessage(err))
		return err
	}

	if err := harvester.HarvestAll(deps.Ctx, specs); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Harvested %d package spec(s) into %s\n", len(specs), outputDir)
	return nil
}

// specs builds the specification list from the config file or the direct
// flags, and returns the effective output directory.
func (c *HarvestCmd) specs() ([]docharvest.PackageSpec, string, error) {
	flagged := len(c.PyPI)+len(c.NPM)+len(c.Cargo)+len(c.NuGet)+len(c.URL)+len(c.File) > 0

	if c.Config != "" {
		if flagged {
			return nil, "", docharvest.Errorf(docharvest.EINVALID, "cannot combine --config with direct package flags")
		}
		cfg, err := toml.Load(c.Config)
		if err != nil {
			return nil, "", err
		}
		specs := cfg.Specs()
		if len(specs) == 0 {
			return nil, "", docharvest.Errorf(docharvest.EINVALID, "no packages specified in %s", c.Config)
		}
		return specs, cfg.OutputDir, nil
	}

	cfg := &toml.Config{
		PyPI:  c.PyPI,
		NPM:   c.NPM,
		Cargo: c.Cargo,
		NuGet: c.NuGet,
		URLs:  c.URL,
		Files: c.File,
	}
	specs := cfg.Specs()
	if len(specs) == 0 {
		return nil, "", docharvest.Errorf(docharvest.EINVALID, "no packages specified; pass --config or package flags")
	}
	return specs, c.OutputDir, nil
}
