package domain

import "errors"

var (
	// ErrDataUnavailable is returned when the catalog could not be retrieved from any source
	ErrDataUnavailable = errors.New("catalog data unavailable")

	// ErrMalformedCatalog is returned when a catalog document is not a usable product list
	ErrMalformedCatalog = errors.New("malformed catalog")

	// ErrCapacityExceeded is returned when the comparison set is already full
	ErrCapacityExceeded = errors.New("comparison set is full")

	// ErrDuplicateItem is returned when a product is already in the comparison set
	ErrDuplicateItem = errors.New("product already in comparison set")

	// ErrStorageCorrupt is returned when durable store content cannot be decoded
	ErrStorageCorrupt = errors.New("stored data is corrupt")

	// ErrStoreKeyNotFound is returned when a key is absent from the durable store
	ErrStoreKeyNotFound = errors.New("key not found in store")

	// ErrProductNotFound is returned when a product id is not in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
