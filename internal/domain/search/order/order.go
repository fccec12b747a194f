// Package order defines how a result page is sorted.
package order

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
)

// Key is a user-facing sort key.
type Key string

// Sort keys. Relevance keeps the store's own ranking.
const (
	Relevance     Key = ""
	CatalogNumber Key = "catalog_number"
	Title         Key = "title"
	Enrollment    Key = "enrollment"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	return k == Relevance || k == CatalogNumber || k == Title || k == Enrollment
}

// StoreField maps the key to its sortable store field; empty for relevance.
func (k Key) StoreField() string {
	switch k {
	case CatalogNumber:
		return fields.FieldCatalogNumber
	case Title:
		return fields.FieldTitle
	case Enrollment:
		return fields.FieldEnrollmentTotal
	default:
		return ""
	}
}

// Order is a sort key and direction.
type Order struct {
	Key  Key
	Desc bool
}

// Parse reads a key and an "asc"/"desc" direction (empty means ascending).
func Parse(key, direction string) (Order, error) {
	k := Key(strings.ToLower(strings.TrimSpace(key)))
	if !k.IsValid() {
		return Order{}, fmt.Errorf("invalid sort key %q (use catalog_number, title or enrollment)", key)
	}
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
		return Order{Key: k}, nil
	case "desc":
		return Order{Key: k, Desc: true}, nil
	default:
		return Order{}, fmt.Errorf("invalid sort direction %q (use asc or desc)", direction)
	}
}
