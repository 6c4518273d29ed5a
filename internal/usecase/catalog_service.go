package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/evora/catalog/internal/domain"
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	CacheTTL          time.Duration
	SuggestLimit      int
	CandidateMinQuery int
}

// CatalogStatus describes where the current catalog snapshot came from
type CatalogStatus struct {
	Source   string    `json:"source"`
	Products int       `json:"products"`
	Degraded bool      `json:"degraded"`
	Notice   string    `json:"notice,omitempty"`
	LoadedAt time.Time `json:"loadedAt"`
}

// CatalogService owns the immutable catalog snapshot and answers search requests with caching
type CatalogService struct {
	loader            domain.CatalogLoader
	cache             domain.CacheRepository
	cacheTTL          time.Duration
	suggestLimit      int
	candidateMinQuery int
	logger            *slog.Logger

	once     sync.Once
	catalog  domain.Catalog
	status   CatalogStatus
	inflight singleflight.Group
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(
	loader domain.CatalogLoader,
	cache domain.CacheRepository,
	config CatalogServiceConfig,
) *CatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	suggestLimit := config.SuggestLimit
	if suggestLimit <= 0 {
		suggestLimit = DefaultSuggestLimit
	}
	minQuery := config.CandidateMinQuery
	if minQuery <= 0 {
		minQuery = DefaultCandidateMinQuery
	}

	return &CatalogService{
		loader:            loader,
		cache:             cache,
		cacheTTL:          cacheTTL,
		suggestLimit:      suggestLimit,
		candidateMinQuery: minQuery,
		logger:            slog.Default().With("component", "catalog"),
	}
}

// Load retrieves the catalog once. Later calls are no-ops and return the first status.
// A degraded load is not an error: the service keeps serving the fallback or empty catalog.
func (s *CatalogService) Load(ctx context.Context) CatalogStatus {
	s.once.Do(func() {
		result := s.loader.Load(ctx)
		s.catalog = result.Catalog
		s.status = CatalogStatus{
			Source:   result.Source,
			Products: len(result.Catalog),
			Degraded: result.Degraded,
			Notice:   result.Notice(),
			LoadedAt: time.Now(),
		}
		if result.Err != nil {
			s.logger.Warn("catalog degraded", "source", result.Source, "products", len(result.Catalog), "error", result.Err)
			return
		}
		s.logger.Info("catalog loaded", "source", result.Source, "products", len(result.Catalog))
	})
	return s.status
}

// Status returns the load status of the current snapshot
func (s *CatalogService) Status() CatalogStatus {
	return s.status
}

// Catalog returns the current snapshot. Callers must treat it as read-only.
func (s *CatalogService) Catalog() domain.Catalog {
	return s.catalog
}

// DefaultState returns the initial query state for the current catalog
func (s *CatalogService) DefaultState(text string) domain.QueryState {
	return DefaultQueryState(s.catalog, text)
}

// Product looks up a product by id
func (s *CatalogService) Product(id domain.ProductID) (domain.Product, error) {
	p, ok := s.catalog.Find(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return p, nil
}

// Facets returns the brand list and price bounds for the filter controls
func (s *CatalogService) Facets() domain.Facets {
	facets := domain.Facets{Brands: BrandsOf(s.catalog)}
	if min, max, ok := PriceBounds(s.catalog); ok {
		facets.Price = &domain.PriceRange{Min: min, Max: max}
	}
	return facets
}

// Search runs the search pipeline for state. Concurrent identical searches share one run.
// Flow: check cache -> apply engine -> cache -> return
func (s *CatalogService) Search(ctx context.Context, state domain.QueryState) ([]domain.Product, error) {
	if state.Price.Min > state.Price.Max {
		return nil, fmt.Errorf("%w: min price above max price", domain.ErrInvalidRequest)
	}

	cacheKey := generateCacheKey(state)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, nil
	}

	v, _, _ := s.inflight.Do(cacheKey, func() (interface{}, error) {
		results := Apply(s.catalog, state)
		if err := s.cache.Set(ctx, cacheKey, results, s.cacheTTL); err != nil {
			s.logger.Debug("result cache write failed", "key", cacheKey, "error", err)
		}
		return results, nil
	})

	// the shared slice is also the cached value
	shared := v.([]domain.Product)
	out := make([]domain.Product, len(shared))
	copy(out, shared)
	return out, nil
}

// Suggest returns autocomplete suggestions for a partial query
func (s *CatalogService) Suggest(query string) []domain.Product {
	return Autocomplete(s.catalog, query, s.suggestLimit)
}

// Candidates returns products the compare picker offers for query
func (s *CatalogService) Candidates(query string) []domain.Product {
	return CandidateSearch(s.catalog, query, s.candidateMinQuery)
}

// generateCacheKey creates a normalized cache key from a query state.
// Format: "search:{keywords}:{brands}:{min}-{max}:{sort}" where keywords and brands
// are lists of quoted strings, so separators inside user input cannot collide.
func generateCacheKey(state domain.QueryState) string {
	brands := make([]string, len(state.Brands))
	copy(brands, state.Brands)
	sort.Strings(brands)

	sortKey, _ := domain.ParseSortKey(string(state.Sort))
	return fmt.Sprintf("search:%s:%s:%s-%s:%s",
		quoteList(Keywords(state.Text)),
		quoteList(brands),
		strconv.FormatFloat(state.Price.Min, 'f', -1, 64),
		strconv.FormatFloat(state.Price.Max, 'f', -1, 64),
		sortKey,
	)
}

// quoteList renders ["a" "b"]
func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[" + strings.Join(quoted, " ") + "]"
}

// getFromCache retrieves a result list from cache
func (s *CatalogService) getFromCache(ctx context.Context, key string) ([]domain.Product, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	results, ok := value.([]domain.Product)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	out := make([]domain.Product, len(results))
	copy(out, results)
	return out, nil
}
