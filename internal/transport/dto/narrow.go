package dto

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	"github.com/kailas-cloud/classdex/internal/domain/search/filter"
)

// kinds only reads value shapes, which do not depend on padding width.
var kinds = fields.Sections(fields.DefaultCatalogNumberWidth)

// NarrowSet turns one field/value pair from a query string into a filter
// set, typing the value by the field's kind. Both empty means no narrowing.
// Unknown fields pass through as exact values so the compiler reports them.
func NarrowSet(field, value string) (filter.Set, error) {
	field, value = strings.TrimSpace(field), strings.TrimSpace(value)
	switch {
	case field == "" && value == "":
		return nil, nil
	case field == "":
		return nil, domain.NewValidation("narrow_field", "is required with narrow_value")
	case value == "":
		return nil, domain.NewValidation("narrow_value", "is required with narrow_field")
	}

	spec, ok := kinds.Lookup(field)
	if !ok {
		return filter.Set{field: filter.Exact(value)}, nil
	}

	switch spec.Kind {
	case fields.Text:
		return filter.Set{field: filter.Phrase(value)}, nil
	case fields.AllOf, fields.AnyOf:
		return filter.Set{field: filter.Values(strings.Split(value, ",")...)}, nil
	case fields.Flag:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, domain.NewValidation("narrow_value", "%q is not a boolean", value)
		}
		return filter.Set{field: filter.Flag(b)}, nil
	case fields.Range:
		if spec.Unit == fields.TimeOfDay {
			return filter.Set{field: filter.Exact(value)}, nil
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, domain.NewValidation("narrow_value", "%q is not a number", value)
		}
		return filter.Set{field: filter.Number(n)}, nil
	default:
		return filter.Set{field: filter.Exact(value)}, nil
	}
}
