package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evora/catalog/config"
	"github.com/evora/catalog/internal/domain"
)

const products = `[
	{"id": 1, "name": "iPhone 15", "brand": "Apple", "description": "Apple smartphone", "price": 799},
	{"id": 2, "name": "Galaxy S24", "brand": "Samsung", "description": "Android flagship", "price": 899}
]`

func testConfig(t *testing.T, sources ...string) *config.Config {
	t.Helper()
	return &config.Config{
		Catalog: config.CatalogConfig{
			Sources:         sources,
			MaxRetries:      1,
			AttemptTimeout:  time.Second,
			FallbackEnabled: true,
		},
		Compare: config.CompareConfig{
			Capacity: 3,
			Key:      "compareList",
			Store:    config.StoreConfig{Type: "file", Path: filepath.Join(t.TempDir(), "compare"), Scope: "test"},
		},
		Cache: config.CacheConfig{TTL: time.Minute, MaxEntries: 16},
	}
}

func TestNew_LoadsCatalogAndRestoresComparison(t *testing.T) {
	source := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(source, []byte(products), 0o644))
	cfg := testConfig(t, source)
	ctx := context.Background()

	first, err := New(ctx, cfg)
	require.NoError(t, err)

	status := first.Catalog.Status()
	assert.Equal(t, source, status.Source)
	assert.Equal(t, 2, status.Products)
	assert.False(t, status.Degraded)

	_, err = first.Compare.AddByID(ctx, "2")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, []domain.ProductID{"2"}, second.Compare.Current().IDs())
}

func TestNew_FallsBackWhenSourcesFail(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.json"))

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	status := a.Catalog.Status()
	assert.True(t, status.Degraded)
	assert.NotEmpty(t, status.Notice)
	assert.NotZero(t, status.Products)
}

func TestNew_UnknownStoreType(t *testing.T) {
	cfg := testConfig(t)
	cfg.Compare.Store.Type = "redis"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
