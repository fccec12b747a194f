package section

import (
	"fmt"

	"github.com/kailas-cloud/classdex/internal/db"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
)

// multiValueSeparator joins tag lists in a section hash.
const multiValueSeparator = "|"

// sortable lists the store fields a search may be ordered by.
var sortable = map[string]bool{
	fields.FieldCatalogNumber:   true,
	fields.FieldTitle:           true,
	fields.FieldEnrollmentTotal: true,
}

// buildIndex derives the FT schema from the filter table. Every filterable
// store field is indexed with its table type; the sort keys and the class
// number are added when the table does not already cover them.
func buildIndex(name, prefix string, table fields.Table) (*db.IndexDefinition, error) {
	b := db.NewIndex(name).Prefix(prefix).Tag(fields.FieldClassNumber)
	seen := map[string]bool{fields.FieldClassNumber: true}

	for _, f := range table.StoreFields() {
		if seen[f.Name] {
			return nil, fmt.Errorf("store field %q indexed with two types", f.Name)
		}
		seen[f.Name] = true

		switch f.Type {
		case fields.StoreTag:
			switch f.Name {
			case fields.FieldMeetingDays, fields.FieldCourseAttributes:
				b = b.TagWithOpts(f.Name, multiValueSeparator, false)
			default:
				b = b.Tag(f.Name)
			}
		case fields.StoreNumeric:
			b = b.Numeric(f.Name)
		case fields.StoreText:
			b = b.TextWeighted(f.Name, f.Weight)
		default:
			return nil, fmt.Errorf("unknown store type %q for %q", f.Type, f.Name)
		}
		if sortable[f.Name] {
			b = b.Sortable()
		}
	}

	if !seen[fields.FieldEnrollmentTotal] {
		b = b.Numeric(fields.FieldEnrollmentTotal).Sortable()
	}
	if !seen[fields.FieldTitle] {
		b = b.Text(fields.FieldTitle).Sortable()
	}
	if !seen[fields.FieldCatalogNumber] {
		b = b.Tag(fields.FieldCatalogNumber).Sortable()
	}

	return b.Build()
}
