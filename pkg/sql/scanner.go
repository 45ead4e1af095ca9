package sql

import "unicode"

// scanReport summarizes the structure of a query outside literals and comments.
type scanReport struct {
	semicolons   int
	depth        int
	unbalanced   bool // a ')' closed more than was opened
	unterminated bool
	// quoted marks every rune that belongs to a literal, quoted identifier or comment.
	quoted []bool
}

// scan walks the query tracking quoting, comment, and parenthesis state.
// Quotes may be escaped by doubling ('') or with a backslash (\'), where a
// backslash escapes exactly the rune after it. When that reading leaves a
// literal open the text is rescanned with backslashes as ordinary characters,
// so both 'a\\' (MySQL) and 'C:\' (standard strings) are accepted.
// PostgreSQL dollar-quoted bodies ($$...$$, $tag$...$tag$) are literals.
func scan(sqlQuery string) scanReport {
	runes := []rune(sqlQuery)
	report := scanRunes(runes, true)
	if report.unterminated {
		if standard := scanRunes(runes, false); !standard.unterminated {
			return standard
		}
	}
	return report
}

func scanRunes(runes []rune, backslashEscapes bool) scanReport {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateBacktick
		stateBracket
		stateLineComment
		stateBlockComment
	)

	report := scanReport{quoted: make([]bool, len(runes))}
	state := stateNormal

	for i := 0; i < len(runes); i++ {
		char := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		if state != stateNormal {
			report.quoted[i] = true
		}

		switch state {
		case stateNormal:
			start := i
			switch {
			case char == ';':
				report.semicolons++
			case char == '\'':
				state = stateSingleQuote
			case char == '"':
				state = stateDoubleQuote
			case char == '`':
				state = stateBacktick
			case char == '[':
				state = stateBracket
			case char == '$':
				tag, ok := dollarTag(runes, i)
				if !ok {
					break
				}
				end := findRunes(runes, tag, i+len(tag))
				if end < 0 {
					markQuoted(report.quoted, i, len(runes))
					report.unterminated = true
					return report
				}
				markQuoted(report.quoted, i, end+len(tag))
				i = end + len(tag) - 1
				continue
			case char == '-' && next == '-':
				state = stateLineComment
				i++
			case char == '/' && next == '*':
				state = stateBlockComment
				i++
			case char == '(':
				report.depth++
			case char == ')':
				report.depth--
				if report.depth < 0 {
					report.unbalanced = true
					report.depth = 0
				}
			}
			if state != stateNormal {
				markQuoted(report.quoted, start, i+1)
			}
		case stateSingleQuote, stateDoubleQuote:
			quote := '\''
			if state == stateDoubleQuote {
				quote = '"'
			}
			switch {
			case char == '\\' && backslashEscapes:
				if i+1 < len(runes) {
					i++
					report.quoted[i] = true
				}
			case char == quote:
				// A doubled quote exits and immediately re-enters, keeping us in the string.
				state = stateNormal
			}
		case stateBacktick:
			if char == '`' {
				state = stateNormal
			}
		case stateBracket:
			if char == ']' {
				state = stateNormal
			}
		case stateLineComment:
			if char == '\n' {
				state = stateNormal
			}
		case stateBlockComment:
			if char == '*' && next == '/' {
				state = stateNormal
				i++
				report.quoted[i] = true
			}
		}
	}

	switch state {
	case stateSingleQuote, stateDoubleQuote, stateBacktick, stateBracket, stateBlockComment:
		report.unterminated = true
	}
	return report
}

// dollarTag returns the opening delimiter ($$ or $tag$) starting at i.
// Positional parameters ($1) and identifiers containing $ are not tags.
func dollarTag(runes []rune, i int) ([]rune, bool) {
	if i > 0 && isIdentRune(runes[i-1]) {
		return nil, false
	}
	for j := i + 1; j < len(runes); j++ {
		r := runes[j]
		if r == '$' {
			return runes[i : j+1], true
		}
		if !isIdentRune(r) || (j == i+1 && unicode.IsDigit(r)) {
			return nil, false
		}
	}
	return nil, false
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func findRunes(runes, needle []rune, from int) int {
	for i := from; i+len(needle) <= len(runes); i++ {
		match := true
		for j, r := range needle {
			if runes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func markQuoted(quoted []bool, from, to int) {
	for i := max(from, 0); i < to && i < len(quoted); i++ {
		quoted[i] = true
	}
}
