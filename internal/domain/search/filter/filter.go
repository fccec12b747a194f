// Package filter holds caller-supplied semantic search filters before compilation.
package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValueKind is the shape of a filter value.
type ValueKind int

// Value shapes.
const (
	KindExact ValueKind = iota + 1
	KindSet
	KindNumber
	KindText
	KindFlag
)

func (k ValueKind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindSet:
		return "set"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindFlag:
		return "flag"
	default:
		return "invalid"
	}
}

// Value is one semantic filter value. Construct with Exact, Values, Number, Phrase or Flag.
type Value struct {
	kind   ValueKind
	str    string
	set    []string
	num    float64
	enable bool
}

// Exact is a single exact value such as a subject code.
func Exact(s string) Value { return Value{kind: KindExact, str: s} }

// Values is a set of exact values. Blank entries and duplicates are dropped, order kept.
func Values(vs ...string) Value {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return Value{kind: KindSet, set: out}
}

// Number is a numeric bound value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Phrase is free text matched fuzzily.
func Phrase(s string) Value { return Value{kind: KindText, str: s} }

// Flag is a boolean presence value.
func Flag(b bool) Value { return Value{kind: KindFlag, enable: b} }

// Kind returns the value shape; the zero Value has an invalid kind.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the exact or phrase string.
func (v Value) Str() string { return v.str }

// Set returns the values of a set.
func (v Value) Set() []string { return v.set }

// Num returns the number.
func (v Value) Num() float64 { return v.num }

// Bool returns the flag.
func (v Value) Bool() bool { return v.enable }

// IsZero reports whether the value carries nothing to filter on.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindExact, KindText:
		return strings.TrimSpace(v.str) == ""
	case KindSet:
		return len(v.set) == 0
	case KindNumber, KindFlag:
		return false
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindExact, KindText:
		return v.str
	case KindSet:
		return strings.Join(v.set, ",")
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindFlag:
		return strconv.FormatBool(v.enable)
	default:
		return ""
	}
}

// Set maps filter names to values. Absent names are not filtered on.
type Set map[string]Value

// With returns a copy of s with name set to v.
func (s Set) With(name string, v Value) Set {
	out := make(Set, len(s)+1)
	for k, val := range s {
		out[k] = val
	}
	out[name] = v
	return out
}

// Names lists the filter names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func (s Set) String() string {
	parts := make([]string, 0, len(s))
	for _, name := range s.Names() {
		parts = append(parts, fmt.Sprintf("%s=%s", name, s[name]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
