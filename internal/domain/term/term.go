// Package term validates academic term codes of the form 1YYS.
package term

import (
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain"
)

// Term is a validated 4-digit term code: a leading 1, a two-digit year and
// a semester digit (3 spring, 6 summer, 9 fall).
type Term string

var semesters = map[byte]string{'3': "Spring", '6': "Summer", '9': "Fall"}

// Parse validates a term code such as "1263" (Spring 2026).
func Parse(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return "", domain.NewValidation("term", "must be a 4-digit code (e.g., 1263 for Spring 2026)")
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return "", domain.NewValidation("term", "must contain only digits")
		}
	}
	if s[0] != '1' {
		return "", domain.NewValidation("term", "first digit must be 1")
	}
	if _, ok := semesters[s[3]]; !ok {
		return "", domain.NewValidation("term", "last digit must be 3 (Spring), 6 (Summer), or 9 (Fall)")
	}
	return Term(s), nil
}

// Semester returns "Spring", "Summer" or "Fall".
func (t Term) Semester() string { return semesters[t[3]] }

// Year returns the four-digit calendar year.
func (t Term) Year() string { return "20" + string(t[1:3]) }

// Description returns e.g. "Spring 2026".
func (t Term) Description() string { return t.Semester() + " " + t.Year() }

func (t Term) String() string { return string(t) }
