// Package compile turns semantic filter sets into store query trees using a fields.Table.
package compile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/clock"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	"github.com/kailas-cloud/classdex/internal/domain/search/filter"
	"github.com/kailas-cloud/classdex/internal/domain/search/query"
)

// Builder compiles filter sets against one field table. It is stateless and safe for concurrent use.
type Builder struct {
	table fields.Table
}

// New creates a Builder over table.
func New(table fields.Table) *Builder {
	return &Builder{table: table}
}

// Table returns the field table the builder compiles against.
func (b *Builder) Table() fields.Table { return b.table }

// Build compiles set into an AND of one or more clauses per present filter,
// in table order. An empty set matches every record.
func (b *Builder) Build(set filter.Set) (query.Node, error) {
	for _, name := range set.Names() {
		if _, ok := b.table.Lookup(name); !ok {
			return query.Node{}, domain.NewValidation(name, "unknown filter")
		}
	}

	var clauses []query.Node
	for _, spec := range b.table.Specs() {
		v, ok := set[spec.Name]
		if !ok {
			continue
		}
		if v.IsZero() {
			return query.Node{}, domain.NewValidation(spec.Name, "empty value")
		}
		cs, err := clausesFor(spec, v)
		if err != nil {
			return query.Node{}, domain.Relabel(spec.Name, err)
		}
		clauses = append(clauses, cs...)
	}

	root, err := query.And(clauses...)
	if err != nil {
		return query.Node{}, domain.NewValidation("filters", "%v", err)
	}
	return root, nil
}

func clausesFor(spec fields.Spec, v filter.Value) ([]query.Node, error) {
	switch spec.Kind {
	case fields.Exact:
		s, err := exactString(spec, v)
		if err != nil {
			return nil, err
		}
		return one(query.Term(spec.StoreField, s))
	case fields.AllOf:
		return terms(spec, v)
	case fields.AnyOf:
		ts, err := terms(spec, v)
		if err != nil {
			return nil, err
		}
		if len(ts) == 1 {
			return ts, nil
		}
		return one(query.Or(1, ts...))
	case fields.Range:
		return rangeClause(spec, v)
	case fields.Window:
		return windowClause(spec, v)
	case fields.Flag:
		return flagClause(spec, v)
	case fields.Text:
		return textClause(spec, v)
	case fields.Prefix:
		return prefixClause(spec, v)
	default:
		return nil, kindError(spec, v)
	}
}

func one(n query.Node, err error) ([]query.Node, error) {
	if err != nil {
		return nil, err
	}
	return []query.Node{n}, nil
}

func kindError(spec fields.Spec, v filter.Value) error {
	return fmt.Errorf("%s filter does not accept a %s value", spec.Kind, v.Kind())
}

func exactString(spec fields.Spec, v filter.Value) (string, error) {
	if v.Kind() != filter.KindExact {
		return "", kindError(spec, v)
	}
	return spec.Canonical(v.Str())
}

func terms(spec fields.Spec, v filter.Value) ([]query.Node, error) {
	var raw []string
	switch v.Kind() {
	case filter.KindSet:
		raw = v.Set()
	case filter.KindExact:
		raw = []string{v.Str()}
	default:
		return nil, kindError(spec, v)
	}

	seen := make(map[string]bool, len(raw))
	out := make([]query.Node, 0, len(raw))
	for _, r := range raw {
		s, err := spec.Canonical(r)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		t, err := query.Term(spec.StoreField, s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func rangeClause(spec fields.Spec, v filter.Value) ([]query.Node, error) {
	var n float64
	switch {
	case v.Kind() == filter.KindNumber:
		n = v.Num()
	case spec.Unit == fields.TimeOfDay && v.Kind() == filter.KindExact:
		m, err := clock.Parse(v.Str())
		if err != nil {
			return nil, err
		}
		n = float64(m)
	default:
		return nil, kindError(spec, v)
	}

	var r query.Range
	var err error
	switch spec.Bound {
	case fields.EQ:
		r, err = query.NewRange(nil, &n, nil, &n)
	case fields.GTE:
		r, err = query.NewRange(nil, &n, nil, nil)
	case fields.GT:
		r, err = query.NewRange(&n, nil, nil, nil)
	case fields.LTE:
		r, err = query.NewRange(nil, nil, nil, &n)
	case fields.LT:
		r, err = query.NewRange(nil, nil, &n, nil)
	}
	if err != nil {
		return nil, err
	}
	return one(query.NewRangeNode(spec.StoreField, r))
}

func windowClause(spec fields.Spec, v filter.Value) ([]query.Node, error) {
	if v.Kind() != filter.KindExact {
		return nil, kindError(spec, v)
	}
	w, ok := spec.Windows[strings.ToLower(strings.TrimSpace(v.Str()))]
	if !ok {
		keys := make([]string, 0, len(spec.Windows))
		for k := range spec.Windows {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return nil, fmt.Errorf("unknown keyword %q (want one of %s)", v.Str(), strings.Join(keys, ", "))
	}
	lo, hi := float64(w.Lo), float64(w.Hi)
	r, err := query.NewRange(nil, &lo, &hi, nil)
	if err != nil {
		return nil, err
	}
	return one(query.NewRangeNode(spec.StoreField, r))
}

func flagClause(spec fields.Spec, v filter.Value) ([]query.Node, error) {
	if v.Kind() != filter.KindFlag {
		return nil, kindError(spec, v)
	}
	zero := 0.0
	var r query.Range
	var err error
	if v.Bool() {
		r, err = query.NewRange(&zero, nil, nil, nil)
	} else {
		r, err = query.NewRange(nil, nil, nil, &zero)
	}
	if err != nil {
		return nil, err
	}
	return one(query.NewRangeNode(spec.StoreField, r))
}

func textClause(spec fields.Spec, v filter.Value) ([]query.Node, error) {
	if v.Kind() != filter.KindText && v.Kind() != filter.KindExact {
		return nil, kindError(spec, v)
	}
	children := make([]query.Node, 0, len(spec.Text))
	for _, w := range spec.Text {
		n, err := query.Text(w.Field, strings.TrimSpace(v.Str()), w.Weight)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return one(query.Or(1, children...))
}

func prefixClause(spec fields.Spec, v filter.Value) ([]query.Node, error) {
	s, err := exactString(spec, v)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(s, "*?") {
		return one(query.Wildcard(spec.StoreField, s))
	}
	if spec.Width > 0 {
		s = fields.PadCatalogNumber(s, spec.Width)
	}
	return one(query.Term(spec.StoreField, s))
}
