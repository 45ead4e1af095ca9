package sql

import (
	"fmt"
	"regexp"
	"strings"
)

var topClausePattern = regexp.MustCompile(`(?i)\bSELECT\s+(DISTINCT\s+)?TOP\b`)

// HasRowLimit reports whether the query already limits its rows. The check is
// a case-insensitive substring test for LIMIT; SQL Server queries also count
// TOP and FETCH clauses.
func HasRowLimit(query string, d Dialect) bool {
	upper := strings.ToUpper(query)
	if strings.Contains(upper, "LIMIT") {
		return true
	}
	if d == MSSQL {
		return topClausePattern.MatchString(query) || strings.Contains(upper, "FETCH NEXT") || strings.Contains(upper, "FETCH FIRST")
	}
	return false
}

// ApplyRowLimit appends a row-limit clause of n rows unless one is present.
// SQL Server has no LIMIT; see applyTop.
func ApplyRowLimit(query string, d Dialect, n int) string {
	query = stripTrailingSemicolon(strings.TrimSpace(query))
	if HasRowLimit(query, d) {
		return query
	}
	if d == MSSQL {
		return applyTop(query, n)
	}
	return fmt.Sprintf("%s LIMIT %d", query, n)
}

// word is a keyword or identifier outside literals and comments.
type word struct {
	text       string // upper-cased
	start, end int    // rune offsets
}

// topLevelWords returns the words of the query that sit outside every
// parenthesis, literal and comment.
func topLevelWords(runes []rune) []word {
	quoted := scan(string(runes)).quoted
	var words []word
	depth := 0
	for i := 0; i < len(runes); i++ {
		if quoted[i] {
			continue
		}
		switch r := runes[i]; {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case isIdentRune(r):
			j := i
			for j < len(runes) && !quoted[j] && isIdentRune(runes[j]) {
				j++
			}
			if depth == 0 {
				words = append(words, word{text: strings.ToUpper(string(runes[i:j])), start: i, end: j})
			}
			i = j - 1
		}
	}
	return words
}

// applyTop caps a SQL Server statement without changing its shape:
//   - an existing OFFSET gets FETCH NEXT n ROWS ONLY
//   - a single SELECT (after any WITH clause) gets TOP (n) after SELECT [DISTINCT|ALL]
//   - a UNION/EXCEPT/INTERSECT with ORDER BY gets OFFSET 0 ROWS FETCH NEXT n ROWS ONLY
//   - any other set operation is wrapped in SELECT TOP (n) * FROM (...), keeping
//     the WITH clause outside the derived table
func applyTop(query string, n int) string {
	runes := []rune(query)
	words := topLevelWords(runes)

	mainSelect := -1
	var hasSetOp, hasOrderBy, hasOffset bool
	for i, w := range words {
		switch w.text {
		case "SELECT":
			if mainSelect < 0 {
				mainSelect = i
			}
		case "UNION", "EXCEPT", "INTERSECT":
			hasSetOp = true
		case "ORDER":
			if i+1 < len(words) && words[i+1].text == "BY" {
				hasOrderBy = true
			}
		case "OFFSET":
			hasOffset = true
		}
	}

	switch {
	case hasOffset:
		return fmt.Sprintf("%s FETCH NEXT %d ROWS ONLY", query, n)
	case mainSelect >= 0 && !hasSetOp:
		insertAt := words[mainSelect].end
		if mainSelect+1 < len(words) {
			if modifier := words[mainSelect+1]; modifier.text == "DISTINCT" || modifier.text == "ALL" {
				insertAt = modifier.end
			}
		}
		return string(runes[:insertAt]) + fmt.Sprintf(" TOP (%d)", n) + string(runes[insertAt:])
	case hasOrderBy:
		return fmt.Sprintf("%s OFFSET 0 ROWS FETCH NEXT %d ROWS ONLY", query, n)
	case mainSelect >= 0:
		prefix := string(runes[:words[mainSelect].start])
		body := string(runes[words[mainSelect].start:])
		return fmt.Sprintf("%sSELECT TOP (%d) * FROM (%s) AS _limited", prefix, n, body)
	default:
		return fmt.Sprintf("SELECT TOP (%d) * FROM (%s) AS _limited", n, query)
	}
}
