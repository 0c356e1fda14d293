package docharvest

import "context"

// RegistryType identifies the package registry a package belongs to.
type RegistryType string

// Supported registry types.
const (
	RegistryPyPI  RegistryType = "pypi"
	RegistryNPM   RegistryType = "npm"
	RegistryCargo RegistryType = "cargo"
	RegistryNuGet RegistryType = "nuget"
	RegistryHTTP  RegistryType = "http"
	RegistryLocal RegistryType = "local"
	RegistryOther RegistryType = "other"
)

// Package holds package metadata from a registry. Identity is the
// (name, version, registry) triple. A Package is either returned by a
// RegistryProvider or synthesized directly for URL and local specs, and is
// immutable once built.
type Package struct {
	Name             string         `json:"name"`
	Version          string         `json:"version"`
	Registry         RegistryType   `json:"registry"`
	RepositoryURL    string         `json:"repository_url,omitempty"`
	DocumentationURL string         `json:"documentation_url,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Validate returns an error if the package contains invalid fields.
func (p *Package) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "package name required")
	}
	if p.Registry == "" {
		return Errorf(EINVALID, "package registry required")
	}
	return nil
}

// RegistryProvider retrieves package metadata from a package registry.
// Implementations hide the registry's HTTP API.
type RegistryProvider interface {
	// GetPackageInfo returns a fully populated Package for name. If version
	// is empty the registry's latest version is used. Fails with EDISCOVERY
	// on any network error, missing package, or malformed response.
	GetPackageInfo(ctx context.Context, name, version string) (*Package, error)
}
