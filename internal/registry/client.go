// Package registry reads the published template index to tell a generated
// project whether a newer template release exists.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	version "github.com/hashicorp/go-version"
)

// DefaultIndexURL is where templates/index.json is published.
const DefaultIndexURL = "https://raw.githubusercontent.com/company/ai-scaffold-templates/main"

const maxDocumentSize = 10 << 20

var (
	// ErrTemplateNotFound is returned when the index does not list a template.
	ErrTemplateNotFound = errors.New("template not in the index")
	// ErrInvalidLocalVersion is returned when a project's own template
	// version does not parse.
	ErrInvalidLocalVersion = errors.New("invalid project template version")
)

// FetchError is a failed request for an index document.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Option configures a Client.
type Option func(*Client)

// Client reads the template index, template manifests and changelogs under
// one base URL.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      *docCache
}

// NewClient creates an index client for DefaultIndexURL unless an option
// says otherwise.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultIndexURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      newDocCache(5 * time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL sets the URL that templates/index.json lives under.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithToken sends token as a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCacheTTL sets how long a fetched document is used without asking the
// server again.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = newDocCache(ttl) }
}

// FetchIndex fetches templates/index.json and checks every listed version.
func (c *Client) FetchIndex(ctx context.Context) (*Index, error) {
	data, err := c.fetch(ctx, "templates/index.json")
	if err != nil {
		return nil, err
	}
	return decodeIndex(data)
}

// FetchTemplate fetches the manifest of the named template.
func (c *Client) FetchTemplate(ctx context.Context, name string) (*TemplateManifest, error) {
	data, err := c.fetch(ctx, path.Join("templates", name, "template.json"))
	if err != nil {
		return nil, err
	}
	return decodeManifest(name, data)
}

// Changelog returns the named template's CHANGELOG.md.
func (c *Client) Changelog(ctx context.Context, name string) ([]byte, error) {
	return c.fetch(ctx, path.Join("templates", name, "CHANGELOG.md"))
}

// Update relates a project's template version to the published one.
type Update struct {
	Template string
	Local    string
	Latest   string
	Status   Status
	// Changes lists the releases newer than Local, newest first. It is only
	// filled in when Status is Outdated.
	Changes []ChangelogEntry
	// ChangesErr is why Changes is empty for an outdated project.
	ChangesErr error
}

// Check looks up name in the index and compares it with local. For an
// outdated project it also collects the changelog entries since local.
func (c *Client) Check(ctx context.Context, name, local string) (*Update, error) {
	if _, err := version.NewVersion(local); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidLocalVersion, local, err)
	}

	idx, err := c.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	meta, ok := idx.Templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	status, err := Compare(local, meta.Version)
	if err != nil {
		return nil, err
	}
	u := &Update{Template: name, Local: local, Latest: meta.Version, Status: status}
	if status != Outdated {
		return u, nil
	}

	manifest, err := c.FetchTemplate(ctx, name)
	if err != nil {
		u.ChangesErr = err
		return u, nil
	}
	u.Changes = manifest.ChangesSince(local)
	return u, nil
}

// fetch returns the document at p, from the cache while it is fresh and
// with a conditional request once it is stale.
func (c *Client) fetch(ctx context.Context, p string) ([]byte, error) {
	cached, fresh, ok := c.cache.lookup(p)
	if ok && fresh {
		return cached.body, nil
	}

	u := c.baseURL + "/" + p
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if ok && cached.etag != "" {
		req.Header.Set("If-None-Match", cached.etag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && ok:
		c.cache.renew(p)
		return cached.body, nil
	case resp.StatusCode != http.StatusOK:
		return nil, &FetchError{URL: u, Status: resp.StatusCode}
	}

	// a login page instead of the document usually means a missing token
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, &FetchError{URL: u, Err: errors.New("got an HTML page; check the index URL and token")}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	c.cache.store(p, data, resp.Header.Get("ETag"))
	return data, nil
}
