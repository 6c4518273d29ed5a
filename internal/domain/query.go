package domain

// SortKey selects the ordering of a result list
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortBrandAsc  SortKey = "brand-asc"
	SortBrandDesc SortKey = "brand-desc"
)

// SortKeys lists every supported sort key, default first
var SortKeys = []SortKey{
	SortRelevance,
	SortPriceAsc,
	SortPriceDesc,
	SortNameAsc,
	SortNameDesc,
	SortBrandAsc,
	SortBrandDesc,
}

// ParseSortKey maps user input to a SortKey. Empty input selects relevance.
// Unknown input returns relevance and false.
func ParseSortKey(s string) (SortKey, bool) {
	if s == "" {
		return SortRelevance, true
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return SortRelevance, false
}

// PriceRange is an inclusive price interval
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies within the range, bounds included
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// QueryState drives a search view: free text, brand filter, price bounds and sort key.
// It is a value; commands produce a new QueryState instead of mutating one.
type QueryState struct {
	Text   string     `json:"q"`
	Brands []string   `json:"brands"`
	Price  PriceRange `json:"price"`
	Sort   SortKey    `json:"sort"`
}

// HasBrand reports whether brand is selected
func (s QueryState) HasBrand(brand string) bool {
	for _, b := range s.Brands {
		if b == brand {
			return true
		}
	}
	return false
}

// Facets describes the filter controls available for a catalog
type Facets struct {
	Brands []string    `json:"brands"`
	Price  *PriceRange `json:"price"`
}

// Span is a half-open byte range [Start, End) of a highlighted match
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}
