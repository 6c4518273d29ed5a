package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/evora/catalog/internal/domain"
	"github.com/evora/catalog/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog *usecase.CatalogService
	compare *usecase.CompareService
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog *usecase.CatalogService, compare *usecase.CompareService) *Handler {
	return &Handler{catalog: catalog, compare: compare}
}

// productResult is a search hit with highlighted text and the cart handoff view
type productResult struct {
	domain.Product
	NameHTML        string          `json:"nameHtml"`
	DescriptionHTML string          `json:"descriptionHtml"`
	DisplayPrice    string          `json:"displayPrice"`
	Cart            domain.CartItem `json:"cart"`
}

// SearchResponse is the body of a search request
type SearchResponse struct {
	Query   domain.QueryState `json:"query"`
	Total   int               `json:"total"`
	Results []productResult   `json:"results"`
	Notice  string            `json:"notice,omitempty"`
}

// CompareResponse is the body of every compare endpoint
type CompareResponse struct {
	Items    []domain.Product         `json:"items"`
	Capacity int                      `json:"capacity"`
	Views    []domain.ProductSpecView `json:"views"`
}

type addCompareRequest struct {
	ProductID domain.ProductID `json:"productId"`
}

type candidateResult struct {
	domain.Product
	Selected bool `json:"selected"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "evora-catalog",
		"version": "1.0.0",
	})
}

// Status reports where the catalog came from and whether it is degraded
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Status())
}

// SearchProducts handles GET /products/search?q=&brand=&min=&max=&sort=
func (h *Handler) SearchProducts(c *gin.Context) {
	state, err := h.queryState(c)
	if err != nil {
		respondError(c, err)
		return
	}

	products, err := h.catalog.Search(c.Request.Context(), state)
	if err != nil {
		respondError(c, err)
		return
	}

	keywords := usecase.Keywords(state.Text)
	results := make([]productResult, 0, len(products))
	for _, p := range products {
		results = append(results, productResult{
			Product:         p,
			NameHTML:        usecase.MarkHTML(p.Name, keywords),
			DescriptionHTML: usecase.MarkHTML(p.Description, keywords),
			DisplayPrice:    domain.FormatPrice(p.Price),
			Cart:            p.CartItem(),
		})
	}

	c.JSON(http.StatusOK, SearchResponse{
		Query:   state,
		Total:   len(results),
		Results: results,
		Notice:  h.catalog.Status().Notice,
	})
}

// queryState builds the query state from request parameters, starting from the defaults
func (h *Handler) queryState(c *gin.Context) (domain.QueryState, error) {
	opts := usecase.QueryOptions{
		Text:   c.Query("q"),
		Brands: c.QueryArray("brand"),
		Sort:   c.Query("sort"),
	}

	var err error
	if opts.Min, err = priceParam(c, "min"); err != nil {
		return domain.QueryState{}, err
	}
	if opts.Max, err = priceParam(c, "max"); err != nil {
		return domain.QueryState{}, err
	}

	return usecase.BuildQueryState(h.catalog.Catalog(), opts)
}

// priceParam parses an optional numeric query parameter
func priceParam(c *gin.Context, name string) (*float64, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidRequest, name)
	}
	return &v, nil
}

// SuggestProducts handles GET /products/suggest?q=
func (h *Handler) SuggestProducts(c *gin.Context) {
	suggestions := h.catalog.Suggest(c.Query("q"))
	if suggestions == nil {
		suggestions = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{
		"query":       c.Query("q"),
		"suggestions": suggestions,
	})
}

// Facets handles GET /products/facets
func (h *Handler) Facets(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Facets())
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.catalog.Product(domain.ProductID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetCompare handles GET /compare
func (h *Handler) GetCompare(c *gin.Context) {
	c.JSON(http.StatusOK, compareResponse(h.compare.Current()))
}

// AddToCompare handles POST /compare with body {"productId": "..."}
func (h *Handler) AddToCompare(c *gin.Context) {
	var req addCompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	if req.ProductID == "" {
		respondError(c, fmt.Errorf("%w: productId is required", domain.ErrInvalidRequest))
		return
	}

	set, err := h.compare.AddByID(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, compareResponse(set))
}

// RemoveFromCompare handles DELETE /compare/:id; unknown ids are a no-op
func (h *Handler) RemoveFromCompare(c *gin.Context) {
	set, err := h.compare.Remove(c.Request.Context(), domain.ProductID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compareResponse(set))
}

// CompareCandidates handles GET /compare/candidates?q=
func (h *Handler) CompareCandidates(c *gin.Context) {
	current := h.compare.Current()
	products := h.catalog.Candidates(c.Query("q"))

	results := make([]candidateResult, 0, len(products))
	for _, p := range products {
		results = append(results, candidateResult{Product: p, Selected: current.Contains(p.ID)})
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   c.Query("q"),
		"results": results,
		"full":    current.Full(),
	})
}

func compareResponse(set domain.ComparisonSet) CompareResponse {
	return CompareResponse{
		Items:    set.Items(),
		Capacity: set.Capacity(),
		Views:    usecase.Render(set),
	}
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateItem), errors.Is(err, domain.ErrCapacityExceeded):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrDataUnavailable), errors.Is(err, domain.ErrMalformedCatalog):
		status, message = http.StatusServiceUnavailable, err.Error()
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}
