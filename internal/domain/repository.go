package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KeyValueStore is the durable, scoped persistence used by the comparison set.
// Get returns ErrStoreKeyNotFound when the key has never been written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// CatalogLoader retrieves the product catalog once per process
type CatalogLoader interface {
	Load(ctx context.Context) LoadResult
}

// LoadResult is the outcome of a catalog load. A degraded result still carries a
// usable (possibly empty) catalog plus a user-facing notice.
type LoadResult struct {
	Catalog  Catalog
	Source   string
	Degraded bool
	Err      error
}

// Notice returns the user-facing explanation for a degraded load
func (r LoadResult) Notice() string {
	if r.Err == nil {
		return ""
	}
	if r.Degraded && len(r.Catalog) > 0 {
		return "Product data could not be loaded; showing a limited catalog."
	}
	return "Unable to load product data. Please check your connection and refresh the page."
}
