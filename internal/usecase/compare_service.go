package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/evora/catalog/internal/domain"
)

const (
	// DefaultCompareKey is the store key the comparison set is saved under
	DefaultCompareKey = "compareList"

	featuresKey          = "features"
	specsUnavailableRow  = "Specifications"
	specsUnavailableText = "Not available for this product"
)

// ProductLookup resolves product ids against the loaded catalog
type ProductLookup interface {
	Product(id domain.ProductID) (domain.Product, error)
}

// CompareServiceConfig holds configuration for the compare service
type CompareServiceConfig struct {
	Capacity int
	Key      string
}

// CompareService maintains the comparison set and persists it after every change
type CompareService struct {
	store    domain.KeyValueStore
	products ProductLookup
	key      string
	capacity int
	logger   *slog.Logger

	mu  sync.Mutex
	set domain.ComparisonSet
}

// NewCompareService creates a compare service. Call Load before use.
func NewCompareService(store domain.KeyValueStore, products ProductLookup, config CompareServiceConfig) *CompareService {
	capacity := config.Capacity
	if capacity <= 0 {
		capacity = domain.DefaultCompareCapacity
	}
	key := config.Key
	if key == "" {
		key = DefaultCompareKey
	}
	return &CompareService{
		store:    store,
		products: products,
		key:      key,
		capacity: capacity,
		logger:   slog.Default().With("component", "compare"),
		set:      domain.NewComparisonSet(capacity, nil),
	}
}

// Load reads the stored comparison set. Absent or corrupt content yields an empty
// set; only store failures are returned.
func (s *CompareService) Load(ctx context.Context) (domain.ComparisonSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Get(ctx, s.key)
	if errors.Is(err, domain.ErrStoreKeyNotFound) {
		s.set = domain.NewComparisonSet(s.capacity, nil)
		return s.set, nil
	}
	if err != nil {
		s.set = domain.NewComparisonSet(s.capacity, nil)
		return s.set, fmt.Errorf("read comparison set: %w", err)
	}

	set, err := DecodeComparisonSet(data, s.capacity)
	if err != nil {
		s.logger.Warn("resetting comparison set", "key", s.key, "error", err)
		set = domain.NewComparisonSet(s.capacity, nil)
	}
	s.set = set
	return s.set, nil
}

// Current returns the comparison set
func (s *CompareService) Current() domain.ComparisonSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Add appends product to the set and persists it.
// On ErrCapacityExceeded or ErrDuplicateItem the set is unchanged.
func (s *CompareService) Add(ctx context.Context, product domain.Product) (domain.ComparisonSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.set.Add(product)
	if err != nil {
		return s.set, err
	}
	if err := s.persist(ctx, next); err != nil {
		return s.set, err
	}
	s.set = next
	s.logger.Info("product added to comparison", "id", product.ID, "size", next.Len())
	return s.set, nil
}

// AddByID resolves id against the catalog and adds the product
func (s *CompareService) AddByID(ctx context.Context, id domain.ProductID) (domain.ComparisonSet, error) {
	product, err := s.products.Product(id)
	if err != nil {
		return s.Current(), err
	}
	return s.Add(ctx, product)
}

// Remove drops the product with id and persists the set. Unknown ids are a no-op.
func (s *CompareService) Remove(ctx context.Context, id domain.ProductID) (domain.ComparisonSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.set.Remove(id)
	if err := s.persist(ctx, next); err != nil {
		return s.set, err
	}
	s.set = next
	return s.set, nil
}

func (s *CompareService) persist(ctx context.Context, set domain.ComparisonSet) error {
	data, err := EncodeComparisonSet(set)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("write comparison set: %w", err)
	}
	return nil
}

// EncodeComparisonSet serializes the set as a JSON array of product records
func EncodeComparisonSet(set domain.ComparisonSet) ([]byte, error) {
	return json.Marshal(set.Items())
}

// DecodeComparisonSet parses a stored JSON array of product records.
// Malformed content returns ErrStorageCorrupt.
func DecodeComparisonSet(data []byte, capacity int) (domain.ComparisonSet, error) {
	var items []domain.Product
	if err := json.Unmarshal(data, &items); err != nil {
		return domain.NewComparisonSet(capacity, nil), fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}
	return domain.NewComparisonSet(capacity, items), nil
}

// Render builds the specification view for every product in the set
func Render(set domain.ComparisonSet) []domain.ProductSpecView {
	caser := cases.Title(language.English, cases.NoLower)

	views := make([]domain.ProductSpecView, 0, set.Len())
	for _, p := range set.Items() {
		views = append(views, domain.ProductSpecView{Product: p, Rows: specRows(p.Specs, caser)})
	}
	return views
}

func specRows(specs domain.Specs, caser cases.Caser) []domain.SpecRow {
	if len(specs) == 0 {
		return []domain.SpecRow{{Label: specsUnavailableRow, Value: specsUnavailableText}}
	}

	rows := make([]domain.SpecRow, 0, len(specs))
	for _, e := range specs {
		if e.Key == featuresKey {
			rows = append(rows, domain.SpecRow{Label: "Features", Value: e.Value.String()})
			continue
		}
		rows = append(rows, domain.SpecRow{Label: HumanizeLabel(e.Key, caser), Value: e.Value.String()})
	}
	return rows
}

// HumanizeLabel turns a spec key like "noise_level" into "Noise Level"
func HumanizeLabel(key string, caser cases.Caser) string {
	return caser.String(strings.ReplaceAll(key, "_", " "))
}
