package redis

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/classdex/internal/domain/search/query"
)

// maxOrExpansion caps the number of conjunctions a min-match or node may expand into.
const maxOrExpansion = 256

// fuzzyMinLen is the shortest text token matched with Levenshtein distance 1.
const fuzzyMinLen = 4

// renderQuery translates a query tree into FT.SEARCH DIALECT 2 syntax.
func renderQuery(n query.Node) (string, error) {
	switch n.Kind() {
	case query.KindMatchAll:
		return "*", nil
	case query.KindTerm:
		return buildTagFilter(n.Field(), n.Value()), nil
	case query.KindRange:
		return buildNumericFilter(n.Field(), n.Range()), nil
	case query.KindWildcard:
		return buildWildcardFilter(n.Field(), n.Value()), nil
	case query.KindText:
		return buildTextFilter(n.Field(), n.Value(), n.Weight()), nil
	case query.KindAnd:
		return renderAnd(n.Children())
	case query.KindOr:
		return renderOr(n.MinMatch(), n.Children())
	default:
		return "", fmt.Errorf("unsupported node kind %s", n.Kind())
	}
}

func renderAnd(children []query.Node) (string, error) {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		if c.IsMatchAll() {
			continue
		}
		p, err := renderQuery(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	switch len(parts) {
	case 0:
		return "*", nil
	case 1:
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " ") + ")", nil
}

// renderOr expands "at least k of n" into a union of k-wide intersections.
func renderOr(minMatch int, children []query.Node) (string, error) {
	for _, c := range children {
		if c.IsMatchAll() && minMatch == 1 {
			return "*", nil
		}
	}
	if minMatch >= len(children) {
		return renderAnd(children)
	}

	parts := make([]string, len(children))
	for i, c := range children {
		p, err := renderQuery(c)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	if minMatch <= 1 {
		return "(" + strings.Join(parts, " | ") + ")", nil
	}

	if binomial(len(parts), minMatch) > maxOrExpansion {
		return "", fmt.Errorf("min match %d of %d clauses expands past %d alternatives",
			minMatch, len(parts), maxOrExpansion)
	}

	var alts []string
	combinations(len(parts), minMatch, func(idx []int) {
		sel := make([]string, len(idx))
		for i, j := range idx {
			sel[i] = parts[j]
		}
		alts = append(alts, "("+strings.Join(sel, " ")+")")
	})
	return "(" + strings.Join(alts, " | ") + ")", nil
}

// combinations calls fn with every k-subset of [0, n) in lexicographic order.
func combinations(n, k int, fn func([]int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	k = min(k, n-k)
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
		if r > maxOrExpansion {
			return r
		}
	}
	return r
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

func buildNumericFilter(key string, r query.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GT() != nil {
		minBound = "(" + formatNumber(*r.GT())
	} else if r.GTE() != nil {
		minBound = formatNumber(*r.GTE())
	}

	if r.LT() != nil {
		maxBound = "(" + formatNumber(*r.LT())
	} else if r.LTE() != nil {
		maxBound = formatNumber(*r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

// buildWildcardFilter uses the plain prefix form for "abc*" and w'...' otherwise.
func buildWildcardFilter(key, pattern string) string {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok && !strings.ContainsAny(prefix, "*?") {
		return fmt.Sprintf("@%s:{%s*}", key, tagEscaper.Replace(prefix))
	}
	return fmt.Sprintf("@%s:{w'%s'}", key, strings.ReplaceAll(pattern, "'", `\'`))
}

// buildTextFilter renders fuzzy terms; the clause carries $weight when it is not 1.
func buildTextFilter(key, text string, weight float64) string {
	tokens := strings.Fields(text)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		esc := escapeQuery(tok)
		if utf8.RuneCountInString(tok) >= fuzzyMinLen {
			esc = "%" + esc + "%"
		}
		terms = append(terms, esc)
	}
	clause := fmt.Sprintf("@%s:(%s)", key, strings.Join(terms, " "))
	if weight == 1 {
		return clause
	}
	return fmt.Sprintf("(%s)=>{$weight:%s}", clause, formatNumber(weight))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`,`, `\,`,
	`.`, `\.`,
)
