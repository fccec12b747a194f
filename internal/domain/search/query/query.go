// Package query defines the structured boolean/range tree handed to the document store.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxChildren is the maximum number of children of an and/or node.
const MaxChildren = 32

// Kind enumerates node kinds.
type Kind int

// Node kinds.
const (
	KindMatchAll Kind = iota
	KindAnd
	KindOr
	KindTerm
	KindRange
	KindWildcard
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindMatchAll:
		return "match_all"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindTerm:
		return "term"
	case KindRange:
		return "range"
	case KindWildcard:
		return "wildcard"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Node is an immutable query tree node. The zero value matches everything.
type Node struct {
	kind     Kind
	field    string
	value    string
	weight   float64
	minMatch int
	rng      Range
	children []Node
}

// MatchAll matches every record.
func MatchAll() Node { return Node{kind: KindMatchAll} }

// And requires every child. A single child is returned unwrapped; no children matches all.
func And(children ...Node) (Node, error) {
	switch len(children) {
	case 0:
		return MatchAll(), nil
	case 1:
		return children[0], nil
	}
	if len(children) > MaxChildren {
		return Node{}, fmt.Errorf("too many and clauses (max %d)", MaxChildren)
	}
	return Node{kind: KindAnd, children: children}, nil
}

// Or requires at least minMatch children to match.
func Or(minMatch int, children ...Node) (Node, error) {
	if len(children) == 0 {
		return Node{}, fmt.Errorf("or requires at least one clause")
	}
	if len(children) > MaxChildren {
		return Node{}, fmt.Errorf("too many or clauses (max %d)", MaxChildren)
	}
	if minMatch < 1 || minMatch > len(children) {
		return Node{}, fmt.Errorf("min match %d out of range [1, %d]", minMatch, len(children))
	}
	return Node{kind: KindOr, minMatch: minMatch, children: children}, nil
}

// Term is an exact equality on field.
func Term(field, value string) (Node, error) {
	if field == "" {
		return Node{}, fmt.Errorf("term field is required")
	}
	if value == "" {
		return Node{}, fmt.Errorf("term value is required for field %q", field)
	}
	return Node{kind: KindTerm, field: field, value: value}, nil
}

// NewRangeNode constrains a numeric field.
func NewRangeNode(field string, r Range) (Node, error) {
	if field == "" {
		return Node{}, fmt.Errorf("range field is required")
	}
	return Node{kind: KindRange, field: field, rng: r}, nil
}

// Wildcard matches field against a pattern where * is any run and ? is one character.
func Wildcard(field, pattern string) (Node, error) {
	if field == "" {
		return Node{}, fmt.Errorf("wildcard field is required")
	}
	if strings.Trim(pattern, "*?") == "" {
		return Node{}, fmt.Errorf("wildcard pattern for %q needs a literal part", field)
	}
	return Node{kind: KindWildcard, field: field, value: pattern}, nil
}

// Text is a fuzzy full-text clause on field; weight scales its relevance.
func Text(field, text string, weight float64) (Node, error) {
	if field == "" {
		return Node{}, fmt.Errorf("text field is required")
	}
	if strings.TrimSpace(text) == "" {
		return Node{}, fmt.Errorf("text is required for field %q", field)
	}
	if weight <= 0 {
		weight = 1
	}
	return Node{kind: KindText, field: field, value: text, weight: weight}, nil
}

// Kind returns the node kind.
func (n Node) Kind() Kind { return n.kind }

// Field returns the store field of a leaf.
func (n Node) Field() string { return n.field }

// Value returns the term value, wildcard pattern or text.
func (n Node) Value() string { return n.value }

// Weight returns the text clause weight.
func (n Node) Weight() float64 { return n.weight }

// MinMatch returns how many children of an or node must match.
func (n Node) MinMatch() int { return n.minMatch }

// Range returns the bounds of a range node.
func (n Node) Range() Range { return n.rng }

// Children returns the children of an and/or node.
func (n Node) Children() []Node { return n.children }

// IsMatchAll reports whether n matches every record.
func (n Node) IsMatchAll() bool { return n.kind == KindMatchAll }

// String renders a compact form, e.g. and(term(subject=CS),range(credits_min>=3)).
func (n Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n Node) write(b *strings.Builder) {
	switch n.kind {
	case KindMatchAll:
		b.WriteString("match_all()")
	case KindAnd, KindOr:
		b.WriteString(n.kind.String())
		b.WriteByte('(')
		if n.kind == KindOr {
			fmt.Fprintf(b, "min=%d,", n.minMatch)
		}
		for i, c := range n.children {
			if i > 0 {
				b.WriteByte(',')
			}
			c.write(b)
		}
		b.WriteByte(')')
	case KindTerm:
		fmt.Fprintf(b, "term(%s=%s)", n.field, n.value)
	case KindWildcard:
		fmt.Fprintf(b, "wildcard(%s=%s)", n.field, n.value)
	case KindText:
		fmt.Fprintf(b, "text(%s~%s^%s)", n.field, n.value, strconv.FormatFloat(n.weight, 'f', -1, 64))
	case KindRange:
		fmt.Fprintf(b, "range(%s%s)", n.field, n.rng)
	}
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRange validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRange(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

func (r Range) String() string {
	var parts []string
	add := func(op string, v *float64) {
		if v != nil {
			parts = append(parts, op+strconv.FormatFloat(*v, 'f', -1, 64))
		}
	}
	add(">", r.gt)
	add(">=", r.gte)
	add("<", r.lt)
	add("<=", r.lte)
	return strings.Join(parts, ",")
}
