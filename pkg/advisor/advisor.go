// Package advisor produces read-only textual advice about SQL queries and
// triages database error messages.
package advisor

import (
	"regexp"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
)

// Rule is a stateless check that yields Advice when Matches returns true.
type Rule struct {
	Name    string
	Advice  string
	Matches func(query string, s *schema.Schema) bool
}

var (
	selectStarPattern = regexp.MustCompile(`(?i)\bSELECT\s+\*`)
	joinPattern       = regexp.MustCompile(`(?i)\bJOIN\b`)
	joinCondPattern   = regexp.MustCompile(`(?i)\b(ON|USING)\b`)
	likePattern       = regexp.MustCompile(`(?i)\bI?LIKE\b`)
	wherePattern      = regexp.MustCompile(`(?i)\bWHERE\b`)
)

// DefaultRules run in declaration order.
var DefaultRules = []Rule{
	{
		Name:   "select_star",
		Advice: "Consider selecting specific columns instead of SELECT *",
		Matches: func(q string, _ *schema.Schema) bool {
			return selectStarPattern.MatchString(q)
		},
	},
	{
		Name:   "join_without_condition",
		Advice: "Add proper JOIN conditions using ON clause",
		Matches: func(q string, _ *schema.Schema) bool {
			return joinPattern.MatchString(q) && !joinCondPattern.MatchString(q)
		},
	},
	{
		Name:   "pattern_match",
		Advice: "Consider using exact matching instead of LIKE when possible",
		Matches: func(q string, _ *schema.Schema) bool {
			return likePattern.MatchString(q)
		},
	},
	{
		Name:   "index_hint",
		Advice: "Consider adding indexes for columns used in WHERE clause",
		Matches: func(q string, s *schema.Schema) bool {
			return s != nil && wherePattern.MatchString(q)
		},
	},
}

// Advisor applies an ordered rule set. It never changes the query.
type Advisor struct {
	rules []Rule
}

// New returns an Advisor over rules, or DefaultRules when none are given.
func New(rules ...Rule) *Advisor {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Advisor{rules: rules}
}

// Suggest returns the advice of every matching rule in rule order, without
// de-duplication. s may be nil when no schema is loaded.
func (a *Advisor) Suggest(query string, s *schema.Schema) []string {
	suggestions := []string{}
	for _, rule := range a.rules {
		if rule.Matches(query, s) {
			suggestions = append(suggestions, rule.Advice)
		}
	}
	return suggestions
}

// Suggest runs DefaultRules.
func Suggest(query string, s *schema.Schema) []string {
	return New().Suggest(query, s)
}
