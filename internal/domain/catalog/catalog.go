// Package catalog holds the enumerated values a filterable field currently takes in the store.
package catalog

// Entry is one distinct field value and the number of sections carrying it.
type Entry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Catalog preserves the store's enumeration order, which callers use as a
// deterministic tie-break. It is not sorted alphabetically.
type Catalog []Entry

// FromValues builds a catalog with zero counts, keeping order.
func FromValues(values ...string) Catalog {
	c := make(Catalog, len(values))
	for i, v := range values {
		c[i] = Entry{Value: v}
	}
	return c
}

// Values lists the values in catalog order.
func (c Catalog) Values() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Value
	}
	return out
}
