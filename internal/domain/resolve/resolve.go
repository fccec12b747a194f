// Package resolve maps loosely typed user values onto canonical catalog values.
//
// Resolution runs a fixed cascade of strategies and returns the first hit,
// so the same (input, catalog, threshold) always yields the same Result.
// Returned values keep the catalog's casing.
package resolve

import (
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/catalog"
)

// DefaultThreshold is the minimum character-set similarity for the last-resort strategy.
const DefaultThreshold = 0.6

// MaxSuggestions caps the suggestion list returned on a miss.
const MaxSuggestions = 10

// Strategy identifies which step of the cascade produced a match.
type Strategy string

// Cascade steps, in evaluation order.
const (
	StrategyNone         Strategy = ""
	StrategyExact        Strategy = "exact"
	StrategyPrefix       Strategy = "prefix"
	StrategyAbbreviation Strategy = "abbreviation"
	StrategyContains     Strategy = "contains"
	StrategyAcronym      Strategy = "acronym"
	StrategySimilarity   Strategy = "similarity"
)

// Result is the outcome of one resolution. Suggestions is only set on a miss.
type Result struct {
	Value       string
	Matched     bool
	Strategy    Strategy
	Suggestions []string
}

// abbreviations maps department names to their usual subject codes.
var abbreviations = map[string]string{
	"computer science":  "CS",
	"mathematics":       "MATH",
	"biology":           "BIOL",
	"chemistry":         "CHEM",
	"physics":           "PHYS",
	"english":           "ENGL",
	"history":           "HIST",
	"psychology":        "PSYC",
	"economics":         "ECON",
	"political science": "POLS",
	"sociology":         "SOC",
	"philosophy":        "PHIL",
	"engineering":       "ENGR",
	"music":             "MUS",
	"art":               "ART",
	"business":          "BUS",
	"accounting":        "ACCT",
	"marketing":         "MKTG",
	"management":        "MGT",
	"finance":           "FIN",
	"communication":     "COMM",
	"nursing":           "NURS",
	"education":         "EDUC",
	"kinesiology":       "KINES",
}

type step struct {
	strategy Strategy
	match    func(in string, c catalog.Catalog) (string, bool)
}

var cascade = []step{
	{StrategyExact, matchExact},
	{StrategyPrefix, matchPrefix},
	{StrategyAbbreviation, matchAbbreviation},
	{StrategyContains, matchContains},
	{StrategyAcronym, matchAcronym},
}

// Resolve finds the canonical value for input in c. The catalog is not modified.
func Resolve(input string, c catalog.Catalog, threshold float64) Result {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" || len(c) == 0 {
		return Result{}
	}

	for _, s := range cascade {
		if v, ok := s.match(in, c); ok {
			return Result{Value: v, Matched: true, Strategy: s.strategy}
		}
	}
	if v, ok := matchSimilarity(in, c, threshold); ok {
		return Result{Value: v, Matched: true, Strategy: StrategySimilarity}
	}
	return Result{Suggestions: suggest(in, c)}
}

// Err converts a miss into a NoMatchError for field; it returns nil on a match.
func Err(field, input string, r Result) error {
	if r.Matched {
		return nil
	}
	return &domain.NoMatchError{Field: field, Input: input, Suggestions: r.Suggestions}
}

func matchExact(in string, c catalog.Catalog) (string, bool) {
	for _, e := range c {
		if strings.ToLower(e.Value) == in {
			return e.Value, true
		}
	}
	return "", false
}

func matchPrefix(in string, c catalog.Catalog) (string, bool) {
	for _, e := range c {
		if strings.HasPrefix(strings.ToLower(e.Value), in) {
			return e.Value, true
		}
	}
	return "", false
}

// matchAbbreviation only succeeds when the code is itself in the catalog.
func matchAbbreviation(in string, c catalog.Catalog) (string, bool) {
	code, ok := abbreviations[in]
	if !ok {
		return "", false
	}
	return matchExact(strings.ToLower(code), c)
}

func matchContains(in string, c catalog.Catalog) (string, bool) {
	for _, e := range c {
		if strings.Contains(strings.ToLower(e.Value), in) {
			return e.Value, true
		}
	}
	return "", false
}

func matchAcronym(in string, c catalog.Catalog) (string, bool) {
	var initials strings.Builder
	for _, w := range strings.Fields(in) {
		r := []rune(w)
		initials.WriteRune(r[0])
	}
	return matchExact(initials.String(), c)
}

// matchSimilarity scores character-set Jaccard similarity. Only a strictly
// better score replaces the current best, so ties go to catalog order.
func matchSimilarity(in string, c catalog.Catalog, threshold float64) (string, bool) {
	inSet := charSet(strings.ReplaceAll(in, " ", ""))
	best, bestScore, found := "", 0.0, false
	for _, e := range c {
		score := jaccard(inSet, charSet(strings.ToLower(e.Value)))
		if score >= threshold && (!found || score > bestScore) {
			best, bestScore, found = e.Value, score, true
		}
	}
	return best, found
}

func charSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

func jaccard(a, b map[rune]struct{}) float64 {
	inter := 0
	for r := range a {
		if _, ok := b[r]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func suggest(in string, c catalog.Catalog) []string {
	first := []rune(in)[0]
	var out []string
	for _, e := range c {
		if len(out) == MaxSuggestions {
			break
		}
		r := []rune(strings.ToLower(e.Value))
		if len(r) > 0 && r[0] == first {
			out = append(out, e.Value)
		}
	}
	return out
}
