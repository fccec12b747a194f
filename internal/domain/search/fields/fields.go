// Package fields declares how each semantic filter name maps onto the store.
//
// A Table is the single source of truth for filter compilation: the query
// builder, value resolution and the index schema all read it, so adding a
// filter is a table edit.
package fields

import (
	"fmt"
	"strings"
)

// Kind is the compilation rule of a filter field.
type Kind string

// Field kinds.
const (
	// Exact compiles to a required term clause.
	Exact Kind = "exact"
	// AllOf compiles to one required term per value.
	AllOf Kind = "all_of"
	// AnyOf compiles to a disjunction with min-match 1.
	AnyOf Kind = "any_of"
	// Range compiles to a one-sided numeric range with the declared bound.
	Range Kind = "range"
	// Window maps a keyword to a [lo, hi) range.
	Window Kind = "window"
	// Flag compiles to a presence predicate over a numeric field.
	Flag Kind = "flag"
	// Text compiles to a weighted fuzzy disjunction across text fields.
	Text Kind = "text"
	// Prefix compiles to a wildcard, or to a padded term when the value has no wildcard.
	Prefix Kind = "prefix"
)

// Bound is the comparison a Range field applies to the supplied value.
type Bound string

// Range bounds.
const (
	EQ  Bound = "="
	GTE Bound = ">="
	GT  Bound = ">"
	LTE Bound = "<="
	LT  Bound = "<"
)

// Unit is how Range values are read.
type Unit int

// Range units.
const (
	// Number takes numeric values as is.
	Number Unit = iota
	// TimeOfDay takes time strings and compares minutes since midnight.
	TimeOfDay
)

// Weighted is a text store field and its relevance weight.
type Weighted struct {
	Field  string
	Weight float64
}

// Interval is a half-open [Lo, Hi) window.
type Interval struct {
	Lo, Hi int
}

// Spec describes one filter field.
type Spec struct {
	Name       string
	Kind       Kind
	StoreField string
	Bound      Bound
	Unit       Unit
	// Width zero-pads non-wildcard Prefix values on the left.
	Width int
	// Aliases maps lowercase input to a canonical store value.
	Aliases map[string]string
	// Windows maps lowercase keywords to intervals for Window fields.
	Windows map[string]Interval
	// Normalize rewrites each value after alias expansion.
	Normalize func(string) (string, error)
	// Text lists weighted store fields for Text kinds.
	Text []Weighted
	// Resolvable marks Exact fields whose values are fuzzy-matched against the store catalog.
	Resolvable bool
}

// Canonical applies aliases and Normalize to a raw value.
func (s Spec) Canonical(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if alias, ok := s.Aliases[strings.ToLower(v)]; ok {
		v = alias
	}
	if s.Normalize != nil {
		return s.Normalize(v)
	}
	return v, nil
}

// Table is an ordered, validated set of field specs.
type Table struct {
	specs  []Spec
	byName map[string]int
}

// NewTable validates specs. Table order fixes clause order in compiled queries.
func NewTable(specs ...Spec) (Table, error) {
	t := Table{specs: specs, byName: make(map[string]int, len(specs))}
	for i, s := range specs {
		if err := validate(s); err != nil {
			return Table{}, err
		}
		if _, dup := t.byName[s.Name]; dup {
			return Table{}, fmt.Errorf("duplicate field %q", s.Name)
		}
		t.byName[s.Name] = i
	}
	return t, nil
}

// MustTable is NewTable that panics on an invalid table.
func MustTable(specs ...Spec) Table {
	t, err := NewTable(specs...)
	if err != nil {
		panic(err)
	}
	return t
}

func validate(s Spec) error {
	if s.Name == "" {
		return fmt.Errorf("field name is required")
	}
	if s.Kind != Text && s.StoreField == "" {
		return fmt.Errorf("field %q: store field is required", s.Name)
	}
	switch s.Kind {
	case Exact, AllOf, AnyOf, Flag:
	case Prefix:
		if s.Width < 0 {
			return fmt.Errorf("field %q: negative width", s.Name)
		}
	case Range:
		switch s.Bound {
		case EQ, GTE, GT, LTE, LT:
		default:
			return fmt.Errorf("field %q: invalid bound %q", s.Name, s.Bound)
		}
	case Window:
		if len(s.Windows) == 0 {
			return fmt.Errorf("field %q: windows are required", s.Name)
		}
		for k, w := range s.Windows {
			if w.Lo >= w.Hi {
				return fmt.Errorf("field %q: empty window %q", s.Name, k)
			}
		}
	case Text:
		if len(s.Text) == 0 {
			return fmt.Errorf("field %q: text fields are required", s.Name)
		}
	default:
		return fmt.Errorf("field %q: invalid kind %q", s.Name, s.Kind)
	}
	if s.Resolvable && s.Kind != Exact {
		return fmt.Errorf("field %q: only exact fields are resolvable", s.Name)
	}
	return nil
}

// Lookup returns the field declared under name.
func (t Table) Lookup(name string) (Spec, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Spec{}, false
	}
	return t.specs[i], true
}

// Specs returns all specs in table order.
func (t Table) Specs() []Spec { return t.specs }

// Names returns all field names in table order.
func (t Table) Names() []string {
	out := make([]string, len(t.specs))
	for i, s := range t.specs {
		out[i] = s.Name
	}
	return out
}

// StoreType is how a store field must be indexed.
type StoreType string

// Store field types.
const (
	StoreTag     StoreType = "tag"
	StoreNumeric StoreType = "numeric"
	StoreText    StoreType = "text"
)

// StoreField is one indexed field implied by the table.
type StoreField struct {
	Name   string
	Type   StoreType
	Weight float64
}

// StoreFields lists the indexed fields the table needs, deduplicated, in table order.
// A field used both as a tag and as text is reported once per type. A text
// field shared by several specs keeps the largest declared weight.
func (t Table) StoreFields() []StoreField {
	type key struct {
		name string
		typ  StoreType
	}
	seen := make(map[key]int)
	var out []StoreField
	add := func(f StoreField) {
		k := key{f.Name, f.Type}
		if i, ok := seen[k]; ok {
			out[i].Weight = max(out[i].Weight, f.Weight)
			return
		}
		seen[k] = len(out)
		out = append(out, f)
	}
	for _, s := range t.specs {
		switch s.Kind {
		case Exact, AllOf, AnyOf, Prefix:
			add(StoreField{Name: s.StoreField, Type: StoreTag})
		case Range, Window, Flag:
			add(StoreField{Name: s.StoreField, Type: StoreNumeric})
		case Text:
			for _, w := range s.Text {
				add(StoreField{Name: w.Field, Type: StoreText, Weight: w.Weight})
			}
		}
	}
	return out
}
