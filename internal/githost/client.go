// Package githost fetches commit metadata and file content from the GitHub
// API. It is the only package that talks to the hosting service.
package githost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFound means the commit or repository does not resolve upstream.
	ErrNotFound = errors.New("githost: not found")
	// ErrAuth means the credential was rejected or is insufficient.
	ErrAuth = errors.New("githost: authentication rejected")
	// ErrUnavailable covers transport failures and upstream 5xx responses.
	ErrUnavailable = errors.New("githost: hosting API unavailable")
)

// CommitFile is one file changed by a commit, with its full content at that
// revision.
type CommitFile struct {
	Path      string
	Content   string
	Additions int
	Deletions int
}

// RepoRef identifies a repository by owner and name.
type RepoRef struct {
	Owner string
	Name  string
}

// defaultFetchConcurrency caps parallel content downloads per commit; the
// hosting API is rate-limit-sensitive.
const defaultFetchConcurrency = 5

var defaultExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

// Config tunes a Client. Zero values pick the defaults above.
type Config struct {
	// BaseURL overrides the GitHub API endpoint (tests, GitHub Enterprise).
	// Must end with a trailing slash when set.
	BaseURL string
	// FetchConcurrency bounds parallel per-file content fetches.
	FetchConcurrency int
	// Extensions is the file-extension allow-list, lowercase with dots.
	Extensions []string
	Logger     *slog.Logger
}

// Client retrieves changed files for a commit. Safe for concurrent use; the
// bearer credential is scoped to each call and never stored.
type Client struct {
	baseURL     string
	concurrency int
	allowed     map[string]struct{}
	logger      *slog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = defaultFetchConcurrency
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = defaultExtensions
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		concurrency: cfg.FetchConcurrency,
		allowed:     allowed,
		logger:      logger,
	}
}

func (c *Client) api(token string) (*github.Client, error) {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	if c.baseURL != "" {
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		gh.BaseURL = u
	}
	return gh, nil
}

// RepoByID resolves a stored numeric repository id into owner/name.
func (c *Client) RepoByID(ctx context.Context, id int64, token string) (RepoRef, error) {
	gh, err := c.api(token)
	if err != nil {
		return RepoRef{}, err
	}
	repo, _, err := gh.Repositories.GetByID(ctx, id)
	if err != nil {
		return RepoRef{}, mapError(err)
	}
	return RepoRef{Owner: repo.GetOwner().GetLogin(), Name: repo.GetName()}, nil
}

// CommitFiles returns the allow-listed files changed by ref, each with its
// content at that revision. The result is unordered. Commit-level failures
// abort the fetch; a single file whose content cannot be retrieved is dropped
// with a warning and the rest of the batch proceeds.
func (c *Client) CommitFiles(ctx context.Context, owner, repo, ref, token string) ([]CommitFile, error) {
	gh, err := c.api(token)
	if err != nil {
		return nil, err
	}

	commit, _, err := gh.Repositories.GetCommit(ctx, owner, repo, ref, nil)
	if err != nil {
		return nil, mapError(err)
	}

	var eligible []*github.CommitFile
	for _, f := range commit.Files {
		if f.GetStatus() == "removed" {
			continue
		}
		if !c.allowedPath(f.GetFilename()) {
			continue
		}
		eligible = append(eligible, f)
	}
	c.logger.Debug("commit resolved",
		"ref", ref, "changed_files", len(commit.Files), "eligible_files", len(eligible))

	var (
		mu    sync.Mutex
		files []CommitFile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, f := range eligible {
		g.Go(func() error {
			content, err := c.fileContent(gctx, gh, owner, repo, f.GetFilename(), ref)
			if err != nil {
				c.logger.Warn("failed to fetch file content, skipping file",
					"file", f.GetFilename(), "err", err)
				return nil
			}
			mu.Lock()
			files = append(files, CommitFile{
				Path:      f.GetFilename(),
				Content:   content,
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) fileContent(ctx context.Context, gh *github.Client, owner, repo, path, ref string) (string, error) {
	fc, _, _, err := gh.Repositories.GetContents(ctx, owner, repo, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", err
	}
	if fc == nil {
		return "", fmt.Errorf("no file content for %s", path)
	}
	return fc.GetContent()
}

func (c *Client) allowedPath(path string) bool {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return false
	}
	_, ok := c.allowed[strings.ToLower(path[idx:])]
	return ok
}

func mapError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: rate limited", ErrUnavailable)
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound, http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

var (
	reHTTPSRepo = regexp.MustCompile(`github\.com/([^/]+)/([^/.]+)`)
	reSSHRepo   = regexp.MustCompile(`github\.com:([^/]+)/([^.]+)`)
)

// ParseRepoURL extracts owner and name from an https or ssh GitHub URL.
func ParseRepoURL(raw string) (RepoRef, error) {
	if m := reHTTPSRepo.FindStringSubmatch(raw); m != nil {
		return RepoRef{Owner: m[1], Name: m[2]}, nil
	}
	if m := reSSHRepo.FindStringSubmatch(raw); m != nil {
		return RepoRef{Owner: m[1], Name: m[2]}, nil
	}
	return RepoRef{}, fmt.Errorf("invalid github repository url %q", raw)
}
