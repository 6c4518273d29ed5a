package usecase

import (
	"fmt"
	"math"

	"github.com/evora/catalog/internal/domain"
)

// DefaultPriceRange is the whole-dollar range covering every catalog price
func DefaultPriceRange(catalog domain.Catalog) domain.PriceRange {
	min, max, ok := PriceBounds(catalog)
	if !ok {
		return domain.PriceRange{}
	}
	return domain.PriceRange{Min: math.Floor(min), Max: math.Ceil(max)}
}

// DefaultQueryState is the state a search page starts with; text usually comes from the q URL parameter
func DefaultQueryState(catalog domain.Catalog, text string) domain.QueryState {
	return domain.QueryState{
		Text:  text,
		Price: DefaultPriceRange(catalog),
		Sort:  domain.SortRelevance,
	}
}

// Command is a user action that produces a new query state
type Command interface {
	apply(state domain.QueryState, catalog domain.Catalog) (domain.QueryState, error)
}

// SetText replaces the free-text query
type SetText struct{ Text string }

// ToggleBrand selects a brand, or unselects it when already selected
type ToggleBrand struct{ Brand string }

// SetPriceRange replaces the price bounds
type SetPriceRange struct{ Min, Max float64 }

// SetSort replaces the sort key
type SetSort struct{ Key string }

// ClearFilters drops brand filters, resets the price range and restores relevance order.
// The free-text query is kept.
type ClearFilters struct{}

func (c SetText) apply(s domain.QueryState, _ domain.Catalog) (domain.QueryState, error) {
	s.Text = c.Text
	return s, nil
}

func (c ToggleBrand) apply(s domain.QueryState, _ domain.Catalog) (domain.QueryState, error) {
	if c.Brand == "" {
		return s, fmt.Errorf("%w: empty brand", domain.ErrInvalidRequest)
	}
	brands := make([]string, 0, len(s.Brands)+1)
	found := false
	for _, b := range s.Brands {
		if b == c.Brand {
			found = true
			continue
		}
		brands = append(brands, b)
	}
	if !found {
		brands = append(brands, c.Brand)
	}
	s.Brands = brands
	return s, nil
}

func (c SetPriceRange) apply(s domain.QueryState, _ domain.Catalog) (domain.QueryState, error) {
	if c.Min < 0 || c.Max < 0 {
		return s, fmt.Errorf("%w: negative price bound", domain.ErrInvalidRequest)
	}
	if c.Min > c.Max {
		return s, fmt.Errorf("%w: min price %.2f above max price %.2f", domain.ErrInvalidRequest, c.Min, c.Max)
	}
	s.Price = domain.PriceRange{Min: c.Min, Max: c.Max}
	return s, nil
}

func (c SetSort) apply(s domain.QueryState, _ domain.Catalog) (domain.QueryState, error) {
	key, ok := domain.ParseSortKey(c.Key)
	if !ok {
		return s, fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidRequest, c.Key)
	}
	s.Sort = key
	return s, nil
}

func (ClearFilters) apply(s domain.QueryState, catalog domain.Catalog) (domain.QueryState, error) {
	s.Brands = nil
	s.Price = DefaultPriceRange(catalog)
	s.Sort = domain.SortRelevance
	return s, nil
}

// Dispatch applies cmd to state. On error the original state is returned unchanged.
func Dispatch(state domain.QueryState, catalog domain.Catalog, cmd Command) (domain.QueryState, error) {
	next, err := cmd.apply(state, catalog)
	if err != nil {
		return state, err
	}
	return next, nil
}

// QueryOptions are raw search parameters as they arrive from a URL or the command line.
// A nil bound keeps the default on that side, widened so the range stays valid.
type QueryOptions struct {
	Text   string
	Brands []string
	Min    *float64
	Max    *float64
	Sort   string
}

// BuildQueryState starts from the default state and dispatches one command per option.
// Repeated brands are selected once.
func BuildQueryState(catalog domain.Catalog, opts QueryOptions) (domain.QueryState, error) {
	state := DefaultQueryState(catalog, opts.Text)

	cmds := make([]Command, 0, len(opts.Brands)+2)
	seen := make(map[string]bool)
	for _, brand := range opts.Brands {
		if seen[brand] {
			continue
		}
		seen[brand] = true
		cmds = append(cmds, ToggleBrand{Brand: brand})
	}
	if opts.Min != nil || opts.Max != nil {
		bounds := state.Price
		switch {
		case opts.Min != nil && opts.Max != nil:
			bounds = domain.PriceRange{Min: *opts.Min, Max: *opts.Max}
		case opts.Min != nil:
			// a one-sided bound past the catalog stretches the default side with it
			bounds.Min = *opts.Min
			bounds.Max = math.Max(bounds.Max, bounds.Min)
		default:
			bounds.Max = *opts.Max
			bounds.Min = math.Min(bounds.Min, bounds.Max)
		}
		cmds = append(cmds, SetPriceRange{Min: bounds.Min, Max: bounds.Max})
	}
	if opts.Sort != "" {
		cmds = append(cmds, SetSort{Key: opts.Sort})
	}

	for _, cmd := range cmds {
		next, err := Dispatch(state, catalog, cmd)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}
