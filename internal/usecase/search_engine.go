package usecase

import (
	"html"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/evora/catalog/internal/domain"
)

const (
	// DefaultSuggestLimit caps autocomplete suggestions
	DefaultSuggestLimit = 8

	// DefaultCandidateMinQuery is the shortest query the compare picker searches for
	DefaultCandidateMinQuery = 2

	highlightOpen  = `<mark class="highlight">`
	highlightClose = `</mark>`
)

// collationTag is the locale used for name and brand ordering
var collationTag = language.English

// newCollator returns a fresh collator; collators keep internal buffers and must not be shared
func newCollator() *collate.Collator {
	return collate.New(collationTag)
}

// Keywords splits a query on whitespace into lowercase keywords.
// Empty tokens are dropped and repeated keywords are kept once, in first-seen order.
func Keywords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// productText holds the lowercased searchable fields of a product
type productText struct {
	name        string
	description string
}

func textOf(p domain.Product) productText {
	return productText{
		name:        strings.ToLower(p.Name),
		description: strings.ToLower(p.Description),
	}
}

func (t productText) contains(keyword string) bool {
	return strings.Contains(t.name, keyword) || strings.Contains(t.description, keyword)
}

// matchCount is the number of keywords found in name or description, at most one per keyword
func (t productText) matchCount(keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if t.contains(kw) {
			n++
		}
	}
	return n
}

// Search returns products whose name or description contains any query keyword.
// An empty query returns the whole catalog in its original order.
func Search(catalog domain.Catalog, query string) []domain.Product {
	keywords := Keywords(query)
	if len(keywords) == 0 {
		out := make([]domain.Product, len(catalog))
		copy(out, catalog)
		return out
	}

	out := make([]domain.Product, 0)
	for _, p := range catalog {
		if textOf(p).matchCount(keywords) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Filter keeps products of a selected brand (any brand when none is selected)
// whose price lies in [minPrice, maxPrice]. Input order is preserved.
func Filter(matches []domain.Product, brands []string, minPrice, maxPrice float64) []domain.Product {
	brandSet := make(map[string]bool, len(brands))
	for _, b := range brands {
		brandSet[b] = true
	}
	bounds := domain.PriceRange{Min: minPrice, Max: maxPrice}

	out := make([]domain.Product, 0, len(matches))
	for _, p := range matches {
		if len(brandSet) > 0 && !brandSet[p.Brand] {
			continue
		}
		if !bounds.Contains(p.Price) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort returns a new slice ordered by key. The sort is stable.
// Relevance with an empty query keeps the input order; otherwise products with more
// matched keywords come first and ties are broken by name.
func Sort(products []domain.Product, key domain.SortKey, query string) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)

	col := newCollator()
	switch key {
	case domain.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case domain.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case domain.SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Name, out[j].Name) < 0 })
	case domain.SortNameDesc:
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Name, out[j].Name) > 0 })
	case domain.SortBrandAsc:
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Brand, out[j].Brand) < 0 })
	case domain.SortBrandDesc:
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Brand, out[j].Brand) > 0 })
	default:
		sortByRelevance(out, Keywords(query), col)
	}
	return out
}

func sortByRelevance(products []domain.Product, keywords []string, col *collate.Collator) {
	if len(keywords) == 0 {
		return
	}

	type scored struct {
		product domain.Product
		matches int
	}
	ranked := make([]scored, len(products))
	for i, p := range products {
		ranked[i] = scored{product: p, matches: textOf(p).matchCount(keywords)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].matches != ranked[j].matches {
			return ranked[i].matches > ranked[j].matches
		}
		return col.CompareString(ranked[i].product.Name, ranked[j].product.Name) < 0
	})

	for i, r := range ranked {
		products[i] = r.product
	}
}

// Apply runs the full search, filter and sort pipeline for a query state
func Apply(catalog domain.Catalog, state domain.QueryState) []domain.Product {
	matches := Search(catalog, state.Text)
	filtered := Filter(matches, state.Brands, state.Price.Min, state.Price.Max)
	return Sort(filtered, state.Sort, state.Text)
}

// Autocomplete matches the whole query as one lowercase substring against name or
// description and returns at most limit products in catalog order.
func Autocomplete(catalog domain.Catalog, query string, limit int) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	out := make([]domain.Product, 0, limit)
	for _, p := range catalog {
		if textOf(p).contains(q) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// CandidateSearch finds products to add to the comparison set by matching the
// whole query against name or brand. Queries shorter than minLen return nothing.
func CandidateSearch(catalog domain.Catalog, query string, minLen int) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if minLen <= 0 {
		minLen = DefaultCandidateMinQuery
	}
	if utf8.RuneCountInString(q) < minLen {
		return nil
	}

	out := make([]domain.Product, 0)
	for _, p := range catalog {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Brand), q) {
			out = append(out, p)
		}
	}
	return out
}

// Highlight returns the merged spans of every case-insensitive keyword occurrence in text
func Highlight(text string, keywords []string) []domain.Span {
	var spans []domain.Span
	for _, kw := range keywords {
		spans = append(spans, findFold(text, kw)...)
	}
	return MergeSpans(spans)
}

// findFold returns non-overlapping occurrences of keyword in text, ignoring case
func findFold(text, keyword string) []domain.Span {
	kw := []rune(strings.ToLower(keyword))
	if len(kw) == 0 {
		return nil
	}

	var spans []domain.Span
	for i := 0; i < len(text); {
		if end, ok := matchFoldAt(text, i, kw); ok {
			spans = append(spans, domain.Span{Start: i, End: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return spans
}

func matchFoldAt(text string, start int, kw []rune) (int, bool) {
	j := start
	for _, want := range kw {
		if j >= len(text) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(text[j:])
		if unicode.ToLower(r) != want {
			return 0, false
		}
		j += size
	}
	return j, true
}

// MergeSpans sorts spans and unions the overlapping or touching ones
func MergeSpans(spans []domain.Span) []domain.Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]domain.Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	merged := []domain.Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// MarkHTML escapes text and wraps every keyword occurrence in a highlight mark
func MarkHTML(text string, keywords []string) string {
	spans := Highlight(text, keywords)
	if len(spans) == 0 {
		return html.EscapeString(text)
	}

	var b strings.Builder
	pos := 0
	for _, s := range spans {
		b.WriteString(html.EscapeString(text[pos:s.Start]))
		b.WriteString(highlightOpen)
		b.WriteString(html.EscapeString(text[s.Start:s.End]))
		b.WriteString(highlightClose)
		pos = s.End
	}
	b.WriteString(html.EscapeString(text[pos:]))
	return b.String()
}

// PriceBounds returns the lowest and highest price in the catalog.
// ok is false for an empty catalog.
func PriceBounds(catalog domain.Catalog) (min, max float64, ok bool) {
	if len(catalog) == 0 {
		return 0, 0, false
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, p := range catalog {
		min = math.Min(min, p.Price)
		max = math.Max(max, p.Price)
	}
	return min, max, true
}

// BrandsOf returns the distinct brands of the catalog in collation order
func BrandsOf(catalog domain.Catalog) []string {
	seen := make(map[string]bool)
	brands := make([]string, 0)
	for _, p := range catalog {
		if p.Brand == "" || seen[p.Brand] {
			continue
		}
		seen[p.Brand] = true
		brands = append(brands, p.Brand)
	}
	col := newCollator()
	col.SortStrings(brands)
	return brands
}
