package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/evora/catalog/internal/domain"
)

// catalogSchema is the shape every catalog document must have before records are mapped.
// Record-level problems are handled by dropping the record, not by rejecting the document.
const catalogSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"properties": {
			"specs": {
				"type": ["object", "null"],
				"additionalProperties": {
					"type": ["string", "number", "boolean", "array", "null"],
					"items": {"type": ["string", "number", "boolean"]}
				}
			}
		}
	}
}`

const schemaURL = "catalog.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(catalogSchema))
	if err != nil {
		return nil, fmt.Errorf("parsing catalog schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("adding catalog schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// DecodeOptions controls record validation
type DecodeOptions struct {
	RequireSpecs bool
	Logger       *slog.Logger
}

// rawProduct mirrors a catalog record; pointers tell missing fields from zero values
type rawProduct struct {
	ID          *domain.ProductID `json:"id"`
	Name        *string           `json:"name"`
	Brand       string            `json:"brand"`
	Description string            `json:"description"`
	Price       *float64          `json:"price"`
	Image       string            `json:"image"`
	Link        string            `json:"link"`
	Specs       domain.Specs      `json:"specs"`
}

// Decode validates a catalog document and maps its usable records to products.
// Records missing id, name or price (or specs when required), with a negative price,
// or repeating an earlier id are dropped. A document that is not a non-empty array of
// objects, or that has no usable record, returns ErrMalformedCatalog.
func Decode(data []byte, opts DecodeOptions) (domain.Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCatalog, err)
	}

	products := make(domain.Catalog, 0, len(records))
	seen := make(map[domain.ProductID]bool, len(records))
	for i, rec := range records {
		var raw rawProduct
		if err := json.Unmarshal(rec, &raw); err != nil {
			logger.Warn("skipping undecodable product record", "index", i, "error", err)
			continue
		}
		product, err := MapToProduct(raw, opts.RequireSpecs)
		if err != nil {
			logger.Warn("skipping product record", "index", i, "error", err)
			continue
		}
		if seen[product.ID] {
			logger.Warn("skipping duplicate product id", "index", i, "id", product.ID)
			continue
		}
		seen[product.ID] = true
		products = append(products, product)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no usable product records", domain.ErrMalformedCatalog)
	}
	return products, nil
}

func validateDocument(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrMalformedCatalog, err)
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", domain.ErrMalformedCatalog, firstLine(verr.Error()))
		}
		return fmt.Errorf("%w: %v", domain.ErrMalformedCatalog, err)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// MapToProduct converts a raw record to a domain Product
func MapToProduct(raw rawProduct, requireSpecs bool) (domain.Product, error) {
	if raw.ID == nil || *raw.ID == "" {
		return domain.Product{}, errors.New("missing id")
	}
	if raw.Name == nil || strings.TrimSpace(*raw.Name) == "" {
		return domain.Product{}, fmt.Errorf("product %s: missing name", *raw.ID)
	}
	if raw.Price == nil {
		return domain.Product{}, fmt.Errorf("product %s: missing price", *raw.ID)
	}
	if *raw.Price < 0 {
		return domain.Product{}, fmt.Errorf("product %s: negative price %.2f", *raw.ID, *raw.Price)
	}
	if requireSpecs && len(raw.Specs) == 0 {
		return domain.Product{}, fmt.Errorf("product %s: missing specifications", *raw.ID)
	}

	return domain.Product{
		ID:          *raw.ID,
		Name:        *raw.Name,
		Brand:       raw.Brand,
		Description: raw.Description,
		Price:       *raw.Price,
		Image:       raw.Image,
		Link:        raw.Link,
		Specs:       raw.Specs,
	}, nil
}

// MergeSpecs attaches specifications to the products that have none, keyed by product id
func MergeSpecs(products domain.Catalog, specsByID map[domain.ProductID]domain.Specs) domain.Catalog {
	out := make(domain.Catalog, len(products))
	for i, p := range products {
		if specs, ok := specsByID[p.ID]; ok && !p.HasSpecs() {
			p.Specs = specs
		}
		out[i] = p
	}
	return out
}

// Encode writes a catalog document in the format Decode reads
func Encode(w io.Writer, products domain.Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(products)
}
