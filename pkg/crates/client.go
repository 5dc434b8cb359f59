// Package crates provides a client for the crates.io registry API.
//
// The client caches responses through a [cache.Cache] backend, retries
// transient failures, and sets the User-Agent header crates.io requires.
package crates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cargodot/cargodot/pkg/cache"
)

const (
	defaultBaseURL = "https://crates.io/api/v1"
	httpTimeout    = 10 * time.Second

	// crates.io rejects requests without a User-Agent.
	userAgent = "cargodot/1.0 (https://github.com/cargodot/cargodot)"

	// fetchConcurrency bounds parallel requests in FetchCrates.
	// The crates.io crawler policy asks clients to stay polite.
	fetchConcurrency = 8
)

var (
	// ErrNotFound is returned when a crate doesn't exist on crates.io.
	ErrNotFound = errors.New("crate not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// CrateInfo holds metadata for a crate from crates.io.
//
// Version is the max_version reported by the registry, which may be
// newer than the version pinned in a lock file. A Downloads value of 0
// is valid for newly published crates.
type CrateInfo struct {
	Name        string // Crate name as published
	Version     string // Latest version on the registry
	Description string // Short description (may be empty)
	License     string // License expression, e.g. "MIT OR Apache-2.0"
	Repository  string // Repository URL (may be empty)
	HomePage    string // Homepage URL (may be empty)
	Downloads   int    // Total downloads across all versions
}

// Client provides access to the crates.io registry API.
// It handles response caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	baseURL string
}

// NewClient creates a crates.io client with the given cache backend.
// A nil backend disables caching. A zero ttl selects [cache.TTLCrate].
func NewClient(backend cache.Cache, ttl time.Duration) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if ttl == 0 {
		ttl = cache.TTLCrate
	}
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   backend,
		ttl:     ttl,
		baseURL: defaultBaseURL,
	}
}

// FetchCrate retrieves metadata for a crate.
//
// The crate name is case-sensitive and must match the published name.
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns [ErrNotFound] if the crate doesn't exist and [ErrNetwork] for
// HTTP failures. The returned CrateInfo is never nil when err is nil.
func (c *Client) FetchCrate(ctx context.Context, crate string, refresh bool) (*CrateInfo, error) {
	var info CrateInfo
	err := c.cached(ctx, cache.CrateKey(crate), refresh, &info, func() error {
		return c.fetch(ctx, crate, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchCrates retrieves metadata for several crates concurrently, with
// at most fetchConcurrency requests in flight. Crates the registry does
// not know, such as unpublished workspace members, are omitted from the
// result rather than failing the whole batch.
func (c *Client) FetchCrates(ctx context.Context, names []string, refresh bool) (map[string]*CrateInfo, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	infos := make([]*CrateInfo, len(names))
	for i, name := range names {
		g.Go(func() error {
			info, err := c.FetchCrate(ctx, name, refresh)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("fetch %s: %w", name, err)
			}
			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]*CrateInfo, len(names))
	for i, name := range names {
		if infos[i] != nil {
			result[name] = infos[i]
		}
	}
	return result, nil
}

// cached serves v from the cache when possible, otherwise runs fetch
// with retries and stores the result.
func (c *Client) cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			if err := json.Unmarshal(data, v); err == nil {
				return nil
			}
		}
	}
	if err := retryTransient(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, key, data, c.ttl)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, crate string, info *CrateInfo) error {
	var data crateResponse
	if err := c.get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, crate), &data); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %s", err, crate)
		}
		return err
	}

	*info = CrateInfo{
		Name:        data.Crate.Name,
		Version:     data.Crate.MaxVersion,
		Description: data.Crate.Description,
		License:     data.Crate.License,
		Repository:  data.Crate.Repository,
		HomePage:    data.Crate.HomePage,
		Downloads:   data.Crate.Downloads,
	}
	return nil
}

// get performs an HTTP GET and JSON-decodes the response into v.
func (c *Client) get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return transient(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return transient(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

type crateResponse struct {
	Crate struct {
		Name        string `json:"name"`
		MaxVersion  string `json:"max_version"`
		Description string `json:"description"`
		License     string `json:"license"`
		Repository  string `json:"repository"`
		HomePage    string `json:"homepage"`
		Downloads   int    `json:"downloads"`
	} `json:"crate"`
}
