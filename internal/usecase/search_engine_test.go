package usecase

import (
	"reflect"
	"strings"
	"testing"

	"github.com/evora/catalog/internal/domain"
)

func phoneCatalog() domain.Catalog {
	return domain.Catalog{
		{ID: "1", Name: "iPhone 15", Brand: "Apple", Description: "Apple smartphone", Price: 799},
		{ID: "2", Name: "Galaxy S24", Brand: "Samsung", Description: "Android flagship", Price: 899},
	}
}

func storeCatalog() domain.Catalog {
	return domain.Catalog{
		{ID: "130", Name: "Apple iPhone 15 Pro Max", Brand: "Apple", Description: "Titanium design with A17 Pro chip", Price: 1199},
		{ID: "131", Name: "Samsung Galaxy S24 Ultra", Brand: "Samsung", Description: "Galaxy AI and a built-in S Pen", Price: 1299.99},
		{ID: "241", Name: "Dell XPS 13", Brand: "Dell", Description: "Compact laptop with InfinityEdge display", Price: 999},
		{ID: "106", Name: "Sony WH-1000XM5", Brand: "Sony", Description: "Noise cancelling headphones", Price: 399.5},
		{ID: "277", Name: "LG OLED C3 TV", Brand: "LG", Description: "OLED evo display with Dolby Vision", Price: 1499},
		{ID: "215", Name: "Samsung Bespoke Washer", Brand: "Samsung", Description: "Smart washer with AI wash", Price: 899},
		{ID: "33", Name: "Apple MacBook Air", Brand: "Apple", Description: "Thin laptop with M3 chip", Price: 1099},
	}
}

func ids(products []domain.Product) []domain.ProductID {
	out := make([]domain.ProductID, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   \t ", nil},
		{"single", "iPhone", []string{"iphone"}},
		{"multiple spaces", "  apple   laptop ", []string{"apple", "laptop"}},
		{"repeated keyword", "Apple apple APPLE chip", []string{"apple", "chip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSearch_EmptyQueryReturnsCatalog(t *testing.T) {
	catalog := storeCatalog()

	for _, q := range []string{"", "   "} {
		got := Search(catalog, q)
		if !reflect.DeepEqual(ids(got), ids(catalog)) {
			t.Errorf("Search(%q) = %v, want whole catalog in order", q, ids(got))
		}
	}
}

func TestSearch_MatchesAnyKeyword(t *testing.T) {
	catalog := storeCatalog()

	tests := []struct {
		name  string
		query string
		want  []domain.ProductID
	}{
		{"name match", "xps", []domain.ProductID{"241"}},
		{"description match", "dolby", []domain.ProductID{"277"}},
		{"case insensitive", "LAPTOP", []domain.ProductID{"241", "33"}},
		{"any keyword", "sony dell", []domain.ProductID{"241", "106"}},
		{"substring inside word", "phone", []domain.ProductID{"130", "106"}},
		{"no match", "refrigerator", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(catalog, tt.query)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, ids(got), tt.want)
			}
		})
	}
}

func TestSearch_ResultPartitionsCatalog(t *testing.T) {
	catalog := storeCatalog()
	queries := []string{"apple", "chip display", "ai", "s24 washer", "zzz", "o"}

	for _, q := range queries {
		keywords := Keywords(q)
		matched := make(map[domain.ProductID]bool)
		for _, p := range Search(catalog, q) {
			matched[p.ID] = true
			if textOf(p).matchCount(keywords) == 0 {
				t.Errorf("Search(%q) returned %s which contains no keyword", q, p.ID)
			}
		}
		for _, p := range catalog {
			if !matched[p.ID] && textOf(p).matchCount(keywords) > 0 {
				t.Errorf("Search(%q) missed %s which contains a keyword", q, p.ID)
			}
		}
	}
}

func TestSearch_PhoneExample(t *testing.T) {
	catalog := domain.Catalog{
		{ID: "1", Name: "iPhone 15", Brand: "Apple", Price: 799},
		{ID: "2", Name: "Galaxy S24", Brand: "Samsung", Price: 899},
	}

	// Plain substring matching: "phone" occurs inside "iPhone", nothing maps it to Galaxy
	got := Search(catalog, "phone")
	if !reflect.DeepEqual(ids(got), []domain.ProductID{"1"}) {
		t.Errorf("Search(phone) = %v, want [1]", ids(got))
	}

	got = Search(catalog, "iphone")
	if !reflect.DeepEqual(ids(got), []domain.ProductID{"1"}) {
		t.Fatalf("Search(iphone) = %v, want [1]", ids(got))
	}
	sorted := Sort(got, domain.SortPriceAsc, "iphone")
	if !reflect.DeepEqual(ids(sorted), []domain.ProductID{"1"}) {
		t.Errorf("Sort(price-asc) = %v, want [1]", ids(sorted))
	}
}

func TestFilter(t *testing.T) {
	catalog := storeCatalog()

	tests := []struct {
		name   string
		brands []string
		min    float64
		max    float64
		want   []domain.ProductID
	}{
		{"no brands full range", nil, 0, 2000, []domain.ProductID{"130", "131", "241", "106", "277", "215", "33"}},
		{"single brand", []string{"Apple"}, 0, 2000, []domain.ProductID{"130", "33"}},
		{"two brands", []string{"Sony", "Dell"}, 0, 2000, []domain.ProductID{"241", "106"}},
		{"inclusive bounds", nil, 899, 1099, []domain.ProductID{"241", "215", "33"}},
		{"brand and price", []string{"Samsung"}, 0, 1000, []domain.ProductID{"215"}},
		{"unknown brand", []string{"Nokia"}, 0, 2000, []domain.ProductID{}},
		{"empty range", nil, 10, 20, []domain.ProductID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(catalog, tt.brands, tt.min, tt.max)
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Filter() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestFilter_IsMonotonic(t *testing.T) {
	catalog := storeCatalog()

	narrow := Filter(catalog, []string{"Apple"}, 1000, 1200)
	widerBrands := Filter(catalog, []string{"Apple", "Dell"}, 1000, 1200)
	widerPrice := Filter(catalog, []string{"Apple"}, 0, 2000)
	noBrands := Filter(catalog, nil, 1000, 1200)

	for _, wider := range [][]domain.Product{widerBrands, widerPrice, noBrands} {
		kept := make(map[domain.ProductID]bool)
		for _, p := range wider {
			kept[p.ID] = true
		}
		for _, p := range narrow {
			if !kept[p.ID] {
				t.Errorf("widening the filter removed %s", p.ID)
			}
		}
	}
}

func TestSort(t *testing.T) {
	catalog := storeCatalog()

	tests := []struct {
		key  domain.SortKey
		want []domain.ProductID
	}{
		{domain.SortPriceAsc, []domain.ProductID{"106", "215", "241", "33", "130", "131", "277"}},
		{domain.SortPriceDesc, []domain.ProductID{"277", "131", "130", "33", "241", "215", "106"}},
		{domain.SortNameAsc, []domain.ProductID{"130", "33", "241", "277", "215", "131", "106"}},
		{domain.SortNameDesc, []domain.ProductID{"106", "131", "215", "277", "241", "33", "130"}},
		{domain.SortBrandAsc, []domain.ProductID{"130", "33", "241", "277", "131", "215", "106"}},
		{domain.SortBrandDesc, []domain.ProductID{"106", "131", "215", "277", "241", "130", "33"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := Sort(catalog, tt.key, "")
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Sort(%s) = %v, want %v", tt.key, ids(got), tt.want)
			}
		})
	}
}

func TestSort_DoesNotModifyInput(t *testing.T) {
	catalog := storeCatalog()
	before := ids(catalog)

	Sort(catalog, domain.SortPriceDesc, "")

	if !reflect.DeepEqual(ids(catalog), before) {
		t.Errorf("Sort modified its input: %v", ids(catalog))
	}
}

func TestSort_PriceAscReversedIsPriceDesc(t *testing.T) {
	catalog := storeCatalog()

	asc := Sort(catalog, domain.SortPriceAsc, "")
	desc := Sort(catalog, domain.SortPriceDesc, "")

	for i := range asc {
		if asc[i].Price != desc[len(desc)-1-i].Price {
			t.Errorf("position %d: asc price %.2f, reversed desc price %.2f", i, asc[i].Price, desc[len(desc)-1-i].Price)
		}
	}
}

func TestSort_NameIsLocaleAware(t *testing.T) {
	products := []domain.Product{
		{ID: "1", Name: "zebra"},
		{ID: "2", Name: "Éclair"},
		{ID: "3", Name: "apple"},
		{ID: "4", Name: "Banana"},
	}

	got := Sort(products, domain.SortNameAsc, "")
	want := []domain.ProductID{"3", "4", "2", "1"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Sort(name-asc) = %v, want %v", ids(got), want)
	}
}

func TestSort_Relevance(t *testing.T) {
	t.Run("empty query keeps order", func(t *testing.T) {
		catalog := storeCatalog()
		got := Sort(catalog, domain.SortRelevance, "  ")
		if !reflect.DeepEqual(ids(got), ids(catalog)) {
			t.Errorf("Sort(relevance, empty) = %v, want input order", ids(got))
		}
	})

	t.Run("tie broken by name", func(t *testing.T) {
		catalog := phoneCatalog()
		matches := Search(catalog, "apple galaxy")
		got := Sort(matches, domain.SortRelevance, "apple galaxy")
		want := []domain.ProductID{"2", "1"}
		if !reflect.DeepEqual(ids(got), want) {
			t.Errorf("Sort(relevance) = %v, want %v", ids(got), want)
		}
	})

	t.Run("more matched keywords first", func(t *testing.T) {
		catalog := storeCatalog()
		query := "apple laptop chip"
		got := Sort(Search(catalog, query), domain.SortRelevance, query)
		// 33 matches all three, 130 matches apple and chip, 241 matches laptop
		want := []domain.ProductID{"33", "130", "241"}
		if !reflect.DeepEqual(ids(got), want) {
			t.Errorf("Sort(relevance) = %v, want %v", ids(got), want)
		}
	})

	t.Run("keyword in both fields counts once", func(t *testing.T) {
		products := []domain.Product{
			{ID: "a", Name: "Zeta galaxy", Description: "galaxy galaxy"},
			{ID: "b", Name: "Alpha galaxy", Description: "ultra"},
		}
		got := Sort(products, domain.SortRelevance, "galaxy")
		want := []domain.ProductID{"b", "a"}
		if !reflect.DeepEqual(ids(got), want) {
			t.Errorf("Sort(relevance) = %v, want %v", ids(got), want)
		}
	})

	t.Run("unknown key sorts by relevance", func(t *testing.T) {
		catalog := phoneCatalog()
		got := Sort(catalog, domain.SortKey("rating"), "apple galaxy")
		if !reflect.DeepEqual(ids(got), []domain.ProductID{"2", "1"}) {
			t.Errorf("Sort(rating) = %v, want relevance order", ids(got))
		}
	})
}

func TestApply(t *testing.T) {
	catalog := storeCatalog()
	state := domain.QueryState{
		Text:   "samsung",
		Brands: []string{"Samsung"},
		Price:  domain.PriceRange{Min: 0, Max: 1300},
		Sort:   domain.SortPriceAsc,
	}

	got := Apply(catalog, state)
	want := []domain.ProductID{"215", "131"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Apply() = %v, want %v", ids(got), want)
	}
}

func TestEmptyCatalog(t *testing.T) {
	var catalog domain.Catalog

	if got := Search(catalog, "apple"); len(got) != 0 {
		t.Errorf("Search() = %v, want empty", got)
	}
	if got := Filter(catalog, []string{"Apple"}, 0, 100); len(got) != 0 {
		t.Errorf("Filter() = %v, want empty", got)
	}
	if got := Sort(catalog, domain.SortNameAsc, ""); len(got) != 0 {
		t.Errorf("Sort() = %v, want empty", got)
	}
	if got := Autocomplete(catalog, "apple", 8); len(got) != 0 {
		t.Errorf("Autocomplete() = %v, want empty", got)
	}
	if got := BrandsOf(catalog); len(got) != 0 {
		t.Errorf("BrandsOf() = %v, want empty", got)
	}
	if _, _, ok := PriceBounds(catalog); ok {
		t.Error("PriceBounds() ok = true, want false for empty catalog")
	}
}

func TestAutocomplete(t *testing.T) {
	catalog := storeCatalog()

	tests := []struct {
		name  string
		query string
		limit int
		want  []domain.ProductID
	}{
		{"empty query", "", 8, nil},
		{"whole query is one substring", "apple laptop", 8, nil},
		{"phrase in name", "galaxy s24", 8, []domain.ProductID{"131"}},
		{"phrase in description", "with a17", 8, []domain.ProductID{"130"}},
		{"catalog order", "samsung", 8, []domain.ProductID{"131", "215"}},
		{"limit", "a", 2, []domain.ProductID{"130", "131"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Autocomplete(catalog, tt.query, tt.limit)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Autocomplete(%q) = %v, want %v", tt.query, ids(got), tt.want)
			}
		})
	}
}

func TestAutocomplete_DefaultLimit(t *testing.T) {
	var catalog domain.Catalog
	for i := 0; i < 12; i++ {
		catalog = append(catalog, domain.Product{ID: domain.ProductID(strings.Repeat("x", i+1)), Name: "Widget"})
	}

	got := Autocomplete(catalog, "widget", 0)
	if len(got) != DefaultSuggestLimit {
		t.Errorf("len(Autocomplete()) = %d, want %d", len(got), DefaultSuggestLimit)
	}
}

func TestCandidateSearch(t *testing.T) {
	catalog := storeCatalog()

	tests := []struct {
		name  string
		query string
		want  []domain.ProductID
	}{
		{"too short", "a", nil},
		{"brand match", "sony", []domain.ProductID{"106"}},
		{"name match", "macbook", []domain.ProductID{"33"}},
		{"description not searched", "dolby", nil},
		{"case insensitive", "  SAMSUNG ", []domain.ProductID{"131", "215"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CandidateSearch(catalog, tt.query, 2)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("CandidateSearch(%q) = %v, want %v", tt.query, ids(got), tt.want)
			}
		})
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		want     []domain.Span
	}{
		{"no keywords", "Apple iPhone", nil, nil},
		{"empty keyword ignored", "Apple iPhone", []string{""}, nil},
		{"case insensitive", "Apple iPhone", []string{"iphone"}, []domain.Span{{Start: 6, End: 12}}},
		{"every occurrence", "pro max pro", []string{"pro"}, []domain.Span{{Start: 0, End: 3}, {Start: 8, End: 11}}},
		{"overlapping keywords merge", "iPhone", []string{"iph", "phone"}, []domain.Span{{Start: 0, End: 6}}},
		{"adjacent keywords merge", "abcd", []string{"ab", "cd"}, []domain.Span{{Start: 0, End: 4}}},
		{"multibyte text", "Café Crème", []string{"crème"}, []domain.Span{{Start: 6, End: 12}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.text, tt.keywords)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Highlight(%q, %v) = %v, want %v", tt.text, tt.keywords, got, tt.want)
			}
		})
	}
}

func TestMarkHTML(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		want     string
	}{
		{"no match", "Dell XPS", []string{"sony"}, "Dell XPS"},
		{"single match", "Dell XPS 13", []string{"xps"}, `Dell <mark class="highlight">XPS</mark> 13`},
		{"escapes text", "Tom & Jerry <b>", []string{"jerry"}, `Tom &amp; <mark class="highlight">Jerry</mark> &lt;b&gt;`},
		{"markup keyword does not match tags", "mark my words", []string{"mark", "class"}, `<mark class="highlight">mark</mark> my words`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkHTML(tt.text, tt.keywords)
			if got != tt.want {
				t.Errorf("MarkHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPriceBounds(t *testing.T) {
	min, max, ok := PriceBounds(storeCatalog())
	if !ok {
		t.Fatal("PriceBounds() ok = false")
	}
	if min != 399.5 || max != 1499 {
		t.Errorf("PriceBounds() = (%v, %v), want (399.5, 1499)", min, max)
	}
}

func TestBrandsOf(t *testing.T) {
	catalog := append(storeCatalog(), domain.Product{ID: "x", Name: "No brand"}, domain.Product{ID: "y", Name: "Lower", Brand: "acer"})

	got := BrandsOf(catalog)
	want := []string{"acer", "Apple", "Dell", "LG", "Samsung", "Sony"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BrandsOf() = %v, want %v", got, want)
	}
}
