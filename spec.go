package docharvest

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// PackageSpec is a normalized package specification parsed from a raw
// command-line or config string.
type PackageSpec struct {
	Name     string
	Registry RegistryType
	Version  string
	URL      string
}

// docExtensions are the document extensions recognized in direct URLs.
var docExtensions = []string{".md", ".rst", ".txt"}

// versionRe matches name==version, name@version, and name:version.
var versionRe = regexp.MustCompile(`^([^=@:]+)(==|@|:)(.+)$`)

// ParseSpec parses a raw specification string into a PackageSpec. Rules, in
// priority order: an HTTP(S) URL whose path ends in a document extension is
// a direct-URL spec; an existing local path is a local-file spec; a
// name/version pair separated by "==", "@", or ":" is a versioned registry
// spec; anything else is a bare registry spec using defaultRegistry.
// ParseSpec never fails: malformed input falls through to a bare-name
// registry spec. The only side effect is an existence check for local paths.
func ParseSpec(raw string, defaultRegistry RegistryType) PackageSpec {
	if defaultRegistry == "" {
		defaultRegistry = RegistryPyPI
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if u, err := url.Parse(raw); err == nil {
			lower := strings.ToLower(u.Path)
			for _, ext := range docExtensions {
				if strings.HasSuffix(lower, ext) {
					return PackageSpec{
						Name:     path.Base(u.Path),
						Registry: RegistryHTTP,
						URL:      raw,
					}
				}
			}
		}
	}

	if _, err := os.Stat(raw); err == nil {
		abs, err := filepath.Abs(raw)
		if err != nil {
			abs = raw
		}
		return PackageSpec{
			Name:     filepath.Base(raw),
			Registry: RegistryLocal,
			URL:      abs,
		}
	}

	if m := versionRe.FindStringSubmatch(raw); m != nil {
		return PackageSpec{
			Name:     m[1],
			Registry: defaultRegistry,
			Version:  m[3],
		}
	}

	return PackageSpec{Name: raw, Registry: defaultRegistry}
}
