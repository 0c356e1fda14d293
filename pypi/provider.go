// Package pypi provides a PyPI-backed implementation of
// docharvest.RegistryProvider using the registry's JSON API.
package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/docharvest"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production PyPI JSON API endpoint.
const DefaultBaseURL = "https://pypi.org/pypi"

// DefaultRequestsPerSecond limits how fast the provider hits the registry.
const DefaultRequestsPerSecond = 5.0

// Ensure Provider implements docharvest.RegistryProvider at compile time.
var _ docharvest.RegistryProvider = (*Provider)(nil)

// Provider retrieves package metadata from PyPI.
type Provider struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides the registry endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.client = c
	}
}

// WithRateLimit sets the request rate limit in requests per second.
func WithRateLimit(rps float64) Option {
	return func(p *Provider) {
		p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewProvider creates a new PyPI Provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// packageInfo mirrors the "info" object of the PyPI JSON response. The
// project URLs are kept raw because the first-GitHub-link rule depends on
// JSON object order, which map decoding discards.
type packageInfo struct {
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Author       string          `json:"author"`
	License      string          `json:"license"`
	RequiresDist []string        `json:"requires_dist"`
	ProjectURLs  json.RawMessage `json:"project_urls"`
}

// projectURL is one ordered entry of the project_urls object.
type projectURL struct {
	Label string
	URL   string
}

// GetPackageInfo returns package metadata from PyPI. If version is empty the
// latest release is used.
func (p *Provider) GetPackageInfo(ctx context.Context, name, version string) (*docharvest.Package, error) {
	if name == "" {
		return nil, docharvest.Errorf(docharvest.EINVALID, "package name required")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EDISCOVERY, "rate limit wait for %q", name)
	}

	u := fmt.Sprintf("%s/%s/json", p.baseURL, name)
	if version != "" {
		u = fmt.Sprintf("%s/%s/%s/json", p.baseURL, name, version)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EDISCOVERY, "build request for %q", name)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EDISCOVERY, "fetch package info for %q", name)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, docharvest.Errorf(docharvest.EDISCOVERY, "package %q not found on PyPI", name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, docharvest.Errorf(docharvest.EDISCOVERY, "PyPI returned HTTP %d for %q", resp.StatusCode, name)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EDISCOVERY, "read response for %q", name)
	}

	var payload struct {
		Info packageInfo `json:"info"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EDISCOVERY, "decode response for %q", name)
	}

	if version == "" {
		version = payload.Info.Version
	}

	urls, err := parseProjectURLs(payload.Info.ProjectURLs)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EDISCOVERY, "decode project urls for %q", name)
	}

	urlMap := make(map[string]string, len(urls))
	for _, pu := range urls {
		urlMap[pu.Label] = pu.URL
	}

	return &docharvest.Package{
		Name:             name,
		Version:          version,
		Registry:         docharvest.RegistryPyPI,
		RepositoryURL:    repositoryURL(urls),
		DocumentationURL: urlMap["Documentation"],
		Metadata: map[string]any{
			"description":   payload.Info.Description,
			"author":        payload.Info.Author,
			"license":       payload.Info.License,
			"project_urls":  urlMap,
			"requires_dist": payload.Info.RequiresDist,
		},
	}, nil
}

// parseProjectURLs decodes the project_urls object preserving declaration
// order. A null or absent object yields no entries.
func parseProjectURLs(raw json.RawMessage) ([]projectURL, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("project_urls is not an object")
	}

	var urls []projectURL
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("project_urls key is not a string")
		}

		var val string
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		urls = append(urls, projectURL{Label: key, URL: val})
	}

	return urls, nil
}

// repositoryURL scans ordered project links for the first GitHub-hosted link
// that is not a sponsors link and canonicalizes it to
// https://github.com/<owner>/<repo>, stripping any trailing path segments.
// Returns an empty string when no GitHub link is present.
func repositoryURL(urls []projectURL) string {
	for _, pu := range urls {
		if !strings.Contains(pu.URL, "github.com") || strings.Contains(pu.URL, "/sponsors/") {
			continue
		}
		parts := strings.Split(pu.URL, "/")
		if len(parts) > 5 {
			parts = parts[:5]
		}
		return strings.Join(parts, "/")
	}
	return ""
}
