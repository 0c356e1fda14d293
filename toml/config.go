// Package toml loads the harvester configuration file.
package toml

import (
	"os"

	"github.com/fwojciec/docharvest"
	gotoml "github.com/pelletier/go-toml/v2"
)

// DefaultOutputDir is used when the config file does not set output_dir.
const DefaultOutputDir = "docs_output"

// Config is the harvester configuration, read from the `llms-txt` table of
// a TOML file. All fields are optional; a missing table yields an empty
// harvest with defaults.
type Config struct {
	PyPI      []string `toml:"pypi"`
	NPM       []string `toml:"npm"`
	Cargo     []string `toml:"cargo"`
	NuGet     []string `toml:"nuget"`
	URLs      []string `toml:"urls"`
	Files     []string `toml:"files"`
	OutputDir string   `toml:"output_dir"`
}

type file struct {
	LlmsTxt Config `toml:"llms-txt"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EINVALID, "failed to read config file %s", path)
	}

	var f file
	if err := gotoml.Unmarshal(data, &f); err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EINVALID, "failed to parse config file %s", path)
	}

	cfg := f.LlmsTxt
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	return &cfg, nil
}

// Specs expands the configured package lists into normalized specs, in
// registry order then list order.
func (c *Config) Specs() []docharvest.PackageSpec {
	var specs []docharvest.PackageSpec

	add := func(raws []string, registry docharvest.RegistryType) {
		for _, raw := range raws {
			specs = append(specs, docharvest.ParseSpec(raw, registry))
		}
	}

	add(c.PyPI, docharvest.RegistryPyPI)
	add(c.NPM, docharvest.RegistryNPM)
	add(c.Cargo, docharvest.RegistryCargo)
	add(c.NuGet, docharvest.RegistryNuGet)
	add(c.URLs, docharvest.RegistryHTTP)
	add(c.Files, docharvest.RegistryLocal)

	return specs
}
