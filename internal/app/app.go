// Package app wires configuration into the catalog and comparison services
// shared by the HTTP server and the command line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evora/catalog/config"
	"github.com/evora/catalog/internal/domain"
	"github.com/evora/catalog/internal/infrastructure/cache"
	"github.com/evora/catalog/internal/infrastructure/catalog"
	"github.com/evora/catalog/internal/infrastructure/store"
	"github.com/evora/catalog/internal/usecase"
)

// App holds the wired services and the resources they own
type App struct {
	Catalog *usecase.CatalogService
	Compare *usecase.CompareService

	store domain.KeyValueStore
	cache *cache.MemoryCache
}

// New builds the services from cfg, loads the catalog and restores the comparison set.
// A degraded catalog load is logged, not returned.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	kv, err := store.New(store.Config{
		Type:  cfg.Compare.Store.Type,
		Path:  cfg.Compare.Store.Path,
		Scope: cfg.Compare.Store.Scope,
	})
	if err != nil {
		return nil, fmt.Errorf("open compare store: %w", err)
	}

	loader := catalog.NewClient(catalog.Config{
		Sources:           cfg.Catalog.Sources,
		MaxRetries:        cfg.Catalog.MaxRetries,
		RetryDelay:        cfg.Catalog.RetryDelay,
		AttemptTimeout:    cfg.Catalog.AttemptTimeout,
		RequireSpecs:      cfg.Catalog.RequireSpecs,
		FallbackEnabled:   cfg.Catalog.FallbackEnabled,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	})

	resultCache := cache.NewMemoryCache(cfg.Cache.MaxEntries)

	catalogService := usecase.NewCatalogService(loader, resultCache, usecase.CatalogServiceConfig{
		CacheTTL:          cfg.Cache.TTL,
		SuggestLimit:      cfg.Search.SuggestLimit,
		CandidateMinQuery: cfg.Search.CandidateMinQuery,
	})
	catalogService.Load(ctx)

	compareService := usecase.NewCompareService(kv, catalogService, usecase.CompareServiceConfig{
		Capacity: cfg.Compare.Capacity,
		Key:      cfg.Compare.Key,
	})
	if _, err := compareService.Load(ctx); err != nil {
		resultCache.Close()
		kv.Close()
		return nil, fmt.Errorf("restore comparison set: %w", err)
	}
	slog.Info("services ready",
		"component", "app",
		"catalog_source", catalogService.Status().Source,
		"compare_store", cfg.Compare.Store.Type,
		"compare_items", compareService.Current().Len(),
	)

	return &App{
		Catalog: catalogService,
		Compare: compareService,
		store:   kv,
		cache:   resultCache,
	}, nil
}

// Close releases the result cache and the compare store
func (a *App) Close() error {
	return errors.Join(a.cache.Close(), a.store.Close())
}
