package catalog

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/evora/catalog/internal/domain"
)

// FallbackVersion names the embedded dataset served when no source can be loaded
const FallbackVersion = "catalog_v1"

//go:embed fallback/catalog_v1.yaml
var fallbackDocument []byte

// fallbackAsset is the layout of the embedded dataset: base product records plus
// specifications keyed by product id, merged at load time
type fallbackAsset struct {
	Version  string                            `yaml:"version"`
	Products []domain.Product                  `yaml:"products"`
	Specs    map[domain.ProductID]domain.Specs `yaml:"specs"`
}

// EmbeddedFallback decodes the embedded dataset
func EmbeddedFallback() (domain.Catalog, error) {
	return decodeFallback(fallbackDocument)
}

func decodeFallback(data []byte) (domain.Catalog, error) {
	var asset fallbackAsset
	if err := yaml.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("decoding fallback dataset: %w", err)
	}
	if asset.Version != FallbackVersion {
		return nil, fmt.Errorf("fallback dataset version %q, want %q", asset.Version, FallbackVersion)
	}
	return MergeSpecs(domain.Catalog(asset.Products), asset.Specs), nil
}

// EncodeFallback writes products in the embedded dataset layout, with specifications
// split out by product id. The output can replace fallback/catalog_v1.yaml.
func EncodeFallback(w io.Writer, products domain.Catalog) error {
	asset := fallbackAsset{
		Version:  FallbackVersion,
		Products: make([]domain.Product, 0, len(products)),
		Specs:    make(map[domain.ProductID]domain.Specs),
	}
	for _, p := range products {
		if p.HasSpecs() {
			asset.Specs[p.ID] = p.Specs
		}
		p.Specs = nil
		asset.Products = append(asset.Products, p)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(asset); err != nil {
		return fmt.Errorf("encoding fallback dataset: %w", err)
	}
	return enc.Close()
}
