package domain

// DefaultCompareCapacity is the number of products that can be compared side by side
const DefaultCompareCapacity = 3

// ComparisonSet is a bounded, ordered, duplicate-free list of products.
// Add and Remove return a new set and leave the receiver untouched.
type ComparisonSet struct {
	items    []Product
	capacity int
}

// NewComparisonSet builds a set from stored items. Items beyond capacity and
// repeated ids are dropped so a hand-edited store can never break the invariants.
func NewComparisonSet(capacity int, items []Product) ComparisonSet {
	if capacity <= 0 {
		capacity = DefaultCompareCapacity
	}
	set := ComparisonSet{capacity: capacity}
	for _, p := range items {
		if len(set.items) == capacity {
			break
		}
		if set.Contains(p.ID) {
			continue
		}
		set.items = append(set.items, p)
	}
	return set
}

// Items returns a copy of the products in insertion order
func (s ComparisonSet) Items() []Product {
	out := make([]Product, len(s.items))
	copy(out, s.items)
	return out
}

// IDs returns product ids in insertion order
func (s ComparisonSet) IDs() []ProductID {
	out := make([]ProductID, len(s.items))
	for i, p := range s.items {
		out[i] = p.ID
	}
	return out
}

func (s ComparisonSet) Len() int      { return len(s.items) }
func (s ComparisonSet) Capacity() int { return s.capacity }
func (s ComparisonSet) Full() bool    { return len(s.items) >= s.capacity }

// Contains reports whether a product with id is in the set
func (s ComparisonSet) Contains(id ProductID) bool {
	for _, p := range s.items {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Add appends product. Fails with ErrCapacityExceeded when full and
// ErrDuplicateItem when the id is already present.
func (s ComparisonSet) Add(product Product) (ComparisonSet, error) {
	if s.Full() {
		return s, ErrCapacityExceeded
	}
	if s.Contains(product.ID) {
		return s, ErrDuplicateItem
	}
	items := make([]Product, 0, len(s.items)+1)
	items = append(items, s.items...)
	items = append(items, product)
	return ComparisonSet{items: items, capacity: s.capacity}, nil
}

// Remove drops the product with id. Removing an absent id is a no-op.
func (s ComparisonSet) Remove(id ProductID) ComparisonSet {
	items := make([]Product, 0, len(s.items))
	for _, p := range s.items {
		if p.ID != id {
			items = append(items, p)
		}
	}
	return ComparisonSet{items: items, capacity: s.capacity}
}

// SpecRow is one label/value line of a product's specification view
type SpecRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProductSpecView is the rendered comparison card for one product
type ProductSpecView struct {
	Product Product   `json:"product"`
	Rows    []SpecRow `json:"rows"`
}
