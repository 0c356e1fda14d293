// Package git provides a go-git based implementation of
// docharvest.ContentFetcher that shallow-clones GitHub repositories.
package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docharvest"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/google/uuid"
)

// Ensure Fetcher implements docharvest.ContentFetcher at compile time.
var _ docharvest.ContentFetcher = (*Fetcher)(nil)

// Fetcher clones GitHub repositories into scratch directories. It tracks
// every scratch directory it allocates and removes all of them on Cleanup.
// Not safe for concurrent use; the pipeline is sequential.
type Fetcher struct {
	tempDirs []string
}

// NewFetcher creates a new repository Fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch shallow-clones the package's repository and returns its location.
// Requires a GitHub repository URL. On any failure every scratch directory
// allocated so far is removed before the error is returned.
func (f *Fetcher) Fetch(ctx context.Context, pkg *docharvest.Package) (*docharvest.CodeLocation, error) {
	if pkg.RepositoryURL == "" || !strings.Contains(pkg.RepositoryURL, "github.com") {
		return nil, docharvest.Errorf(docharvest.EFETCH, "invalid GitHub repository URL: %q", pkg.RepositoryURL)
	}

	dir := filepath.Join(os.TempDir(), "docharvest-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "create scratch directory")
	}
	f.tempDirs = append(f.tempDirs, dir)

	loc, err := f.clone(ctx, pkg, dir)
	if err != nil {
		if cleanupErr := f.Cleanup(); cleanupErr != nil {
			return nil, docharvest.WrapErrorf(cleanupErr, docharvest.EFETCH, "cleanup after failed fetch of %q", pkg.RepositoryURL)
		}
		return nil, err
	}

	return loc, nil
}

func (f *Fetcher) clone(ctx context.Context, pkg *docharvest.Package, dir string) (*docharvest.CodeLocation, error) {
	cloneURL := CloneURL(pkg.RepositoryURL)

	branches, err := listBranches(ctx, cloneURL)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "list branches for %q", pkg.RepositoryURL)
	}
	if len(branches) == 0 {
		return nil, docharvest.Errorf(docharvest.EFETCH, "no branches found in repository %q", pkg.RepositoryURL)
	}
	branch := DefaultBranch(branches)

	// History is not needed for documentation harvesting.
	repo, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:           cloneURL,
		Depth:         1,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Tags:          gogit.NoTags,
	})
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "clone %q", cloneURL)
	}

	commit := ""
	if head, err := repo.Head(); err == nil {
		commit = head.Hash().String()
	}

	return &docharvest.CodeLocation{
		Path:      dir,
		SourceURL: pkg.RepositoryURL,
		Metadata: map[string]any{
			"type":           "github",
			"default_branch": branch,
			"commit_hash":    commit,
		},
	}, nil
}

// Cleanup removes all scratch directories the fetcher has allocated.
// Missing directories are skipped, so calling Cleanup twice is safe.
func (f *Fetcher) Cleanup() error {
	var firstErr error
	for _, dir := range f.tempDirs {
		if err := os.RemoveAll(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.tempDirs = nil
	return firstErr
}

// CloneURL converts a GitHub repository URL to its clone URL.
func CloneURL(repoURL string) string {
	return strings.TrimSuffix(repoURL, "/") + ".git"
}

// DefaultBranch picks the branch to clone from the remote's branch list:
// main if present, then master, then the first branch listed.
func DefaultBranch(branches []string) string {
	for _, want := range []string{"main", "master"} {
		for _, b := range branches {
			if b == want {
				return b
			}
		}
	}
	return branches[0]
}

// listBranches returns the branch names advertised by the remote, in the
// order the remote lists them.
func listBranches(ctx context.Context, cloneURL string) ([]string, error) {
	remote := gogit.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{cloneURL},
	})

	refs, err := remote.ListContext(ctx, &gogit.ListOptions{})
	if err != nil {
		return nil, err
	}

	var branches []string
	for _, ref := range refs {
		if ref.Name().IsBranch() {
			branches = append(branches, ref.Name().Short())
		}
	}
	return branches, nil
}
