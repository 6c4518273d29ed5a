// Package catalog retrieves the storefront product catalog from a list of candidate
// locations, validates it, and falls back to an embedded dataset when every location fails.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/evora/catalog/internal/domain"
)

// maxDocumentBytes bounds how much of a catalog response is read
const maxDocumentBytes = 32 << 20

// Config holds loader settings
type Config struct {
	Sources           []string      // http(s) URLs, file:// URLs or local paths, tried in order
	MaxRetries        int           // rounds over all sources before falling back
	RetryDelay        time.Duration // pause between rounds
	AttemptTimeout    time.Duration // bound on a single source fetch
	RequireSpecs      bool          // drop records without a specification map
	FallbackEnabled   bool          // use the embedded dataset when every round fails
	RequestsPerSecond float64       // pacing of outgoing fetches
}

// Client handles retrieval of the catalog document
type Client struct {
	httpClient  *http.Client
	cfg         Config
	rateLimiter *rate.Limiter
	fallback    func() (domain.Catalog, error)
	logger      *slog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for remote sources
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithFallback replaces the embedded fallback dataset
func WithFallback(fn func() (domain.Catalog, error)) Option {
	return func(c *Client) { c.fallback = fn }
}

// NewClient creates a new catalog loader
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 5 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}

	c := &Client{
		httpClient:  &http.Client{},
		cfg:         cfg,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 4),
		fallback:    EmbeddedFallback,
		logger:      slog.Default().With("component", "catalog-loader"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load retrieves the catalog. It never fails outright: when every source is exhausted
// the result is degraded, carrying the fallback (or an empty) catalog and the cause.
func (c *Client) Load(ctx context.Context) domain.LoadResult {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		c.logger.Debug("loading catalog", "attempt", attempt, "max_attempts", c.cfg.MaxRetries)

		products, source, err := c.fetchRound(ctx)
		if err == nil {
			c.logger.Info("catalog loaded", "source", source, "products", len(products), "attempt", attempt)
			return domain.LoadResult{Catalog: products, Source: source}
		}

		lastErr = err
		c.logger.Warn("catalog attempt failed", "attempt", attempt, "error", err)

		if attempt == c.cfg.MaxRetries {
			break
		}
		if err := sleepContext(ctx, c.cfg.RetryDelay); err != nil {
			lastErr = err
			break
		}
	}

	c.logger.Error("all catalog attempts exhausted", "error", lastErr)
	return c.degrade(lastErr)
}

// fetchRound tries every source once, in order, and returns the first usable catalog
func (c *Client) fetchRound(ctx context.Context) (domain.Catalog, string, error) {
	if len(c.cfg.Sources) == 0 {
		return nil, "", fmt.Errorf("%w: no catalog sources configured", domain.ErrDataUnavailable)
	}

	var errs []error
	for _, source := range c.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		data, err := c.fetchSource(ctx, source)
		if err != nil {
			c.logger.Warn("catalog source failed", "source", source, "error", err)
			errs = append(errs, err)
			continue
		}

		products, err := Decode(data, DecodeOptions{RequireSpecs: c.cfg.RequireSpecs, Logger: c.logger})
		if err != nil {
			c.logger.Warn("catalog source unusable", "source", source, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			continue
		}
		return products, source, nil
	}
	return nil, "", errors.Join(errs...)
}

// fetchSource reads one candidate location within the per-attempt timeout
func (c *Client) fetchSource(ctx context.Context, source string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	if isRemote(source) {
		return c.fetchRemote(attemptCtx, source)
	}
	return readLocal(attemptCtx, source)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// fetchRemote executes an HTTP GET request with proper headers and error handling
func (c *Client) fetchRemote(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", "EvoraCatalog/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrDataUnavailable, reqURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrDataUnavailable, reqURL, err)
	}
	return body, nil
}

// readLocal reads a file path or file:// URL
func readLocal(ctx context.Context, source string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(source, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	return data, nil
}

// degrade builds the result used once every source has failed
func (c *Client) degrade(cause error) domain.LoadResult {
	notice := fmt.Errorf("%w: %v", domain.ErrDataUnavailable, cause)
	if !c.cfg.FallbackEnabled || c.fallback == nil {
		return domain.LoadResult{Catalog: domain.Catalog{}, Source: "none", Degraded: true, Err: notice}
	}

	products, err := c.fallback()
	if err != nil || len(products) == 0 {
		c.logger.Error("fallback catalog unavailable", "error", err)
		return domain.LoadResult{Catalog: domain.Catalog{}, Source: "none", Degraded: true, Err: notice}
	}

	c.logger.Warn("serving fallback catalog", "version", FallbackVersion, "products", len(products))
	return domain.LoadResult{
		Catalog:  products,
		Source:   "embedded:" + FallbackVersion,
		Degraded: true,
		Err:      notice,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
