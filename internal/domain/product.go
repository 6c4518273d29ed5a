package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProductID identifies a product within a catalog snapshot.
// Catalog documents may carry ids as numbers or strings; both decode to the same ProductID.
type ProductID string

// UnmarshalJSON accepts both `"130"` and `130`
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(strings.TrimSpace(s))
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// UnmarshalYAML accepts scalar ids of any kind
func (id *ProductID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("product id must be a scalar, got yaml kind %d", node.Kind)
	}
	*id = ProductID(strings.TrimSpace(node.Value))
	return nil
}

// Product represents a sellable item in the storefront catalog
type Product struct {
	ID          ProductID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Brand       string    `json:"brand" yaml:"brand"`
	Description string    `json:"description" yaml:"description"`
	Price       float64   `json:"price" yaml:"price"`
	Image       string    `json:"image" yaml:"image"`
	Link        string    `json:"link" yaml:"link"`
	Specs       Specs     `json:"specs,omitempty" yaml:"specs,omitempty"`
}

// HasSpecs reports whether the product carries at least one specification entry
func (p Product) HasSpecs() bool {
	return len(p.Specs) > 0
}

// CartItem is the subset of product data handed to the cart
type CartItem struct {
	ID    ProductID `json:"id"`
	Name  string    `json:"name"`
	Price float64   `json:"price"`
	Image string    `json:"image"`
}

// CartItem returns the cart handoff view of the product
func (p Product) CartItem() CartItem {
	return CartItem{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image}
}

// Catalog is the ordered, read-only product list for a session
type Catalog []Product

// Find returns the product with the given id
func (c Catalog) Find(id ProductID) (Product, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// SpecValue is a specification value: either a single text or an ordered list of texts
type SpecValue struct {
	Text   string
	List   []string
	IsList bool
}

// TextValue builds a single-text SpecValue
func TextValue(s string) SpecValue {
	return SpecValue{Text: s}
}

// ListValue builds a list SpecValue
func ListValue(items ...string) SpecValue {
	return SpecValue{List: items, IsList: true}
}

// String renders the value the way the comparison view shows it
func (v SpecValue) String() string {
	if v.IsList {
		return strings.Join(v.List, ", ")
	}
	return v.Text
}

// MarshalJSON writes a string or an array of strings
func (v SpecValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		list := v.List
		if list == nil {
			list = []string{}
		}
		return json.Marshal(list)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON reads a string, an array, or any other scalar kept as its literal text
func (v *SpecValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		*v = SpecValue{}
	case data[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			items = append(items, scalarText(r))
		}
		*v = SpecValue{List: items, IsList: true}
	default:
		*v = SpecValue{Text: scalarText(data)}
	}
	return nil
}

func scalarText(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	return string(raw)
}

// SpecEntry is one key/value pair of a product specification
type SpecEntry struct {
	Key   string
	Value SpecValue
}

// Specs is an ordered specification map. Document key order is preserved.
type Specs []SpecEntry

// Get returns the value stored under key
func (s Specs) Get(key string) (SpecValue, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Value, true
		}
	}
	return SpecValue{}, false
}

// MarshalJSON writes the entries as a JSON object in order
func (s Specs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. null decodes to no specs.
func (s *Specs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("specs must be a JSON object")
	}

	out := Specs{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("specs key must be a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("specs[%q]: %w", key, err)
		}
		var val SpecValue
		if err := val.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("specs[%q]: %w", key, err)
		}
		out = append(out, SpecEntry{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}

// MarshalYAML writes the entries as an ordered YAML mapping
func (s Specs) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range s {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: e.Key}
		var val *yaml.Node
		if e.Value.IsList {
			val = &yaml.Node{Kind: yaml.SequenceNode}
			for _, item := range e.Value.List {
				val.Content = append(val.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: item})
			}
		} else {
			val = &yaml.Node{Kind: yaml.ScalarNode, Value: e.Value.Text}
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// UnmarshalYAML reads a YAML mapping keeping key order
func (s *Specs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("specs must be a mapping, got yaml kind %d", node.Kind)
	}
	out := make(Specs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		valNode := node.Content[i+1]
		switch valNode.Kind {
		case yaml.SequenceNode:
			items := make([]string, 0, len(valNode.Content))
			for _, item := range valNode.Content {
				items = append(items, item.Value)
			}
			out = append(out, SpecEntry{Key: key, Value: ListValue(items...)})
		case yaml.ScalarNode:
			out = append(out, SpecEntry{Key: key, Value: TextValue(valNode.Value)})
		default:
			return fmt.Errorf("specs[%q]: unsupported yaml kind %d", key, valNode.Kind)
		}
	}
	*s = out
	return nil
}

// FormatPrice renders a price with two decimals, e.g. "$799.00"
func FormatPrice(price float64) string {
	return "$" + strconv.FormatFloat(price, 'f', 2, 64)
}
