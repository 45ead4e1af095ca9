package datasource

import (
	"strings"

	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// EfficientPlanHint is returned when no plan pattern matches.
const EfficientPlanHint = "Query plan looks efficient - no obvious optimization opportunities detected"

type planPattern struct {
	contains []string // all must be present
	hint     string
}

var planPatterns = map[sqlpkg.Dialect][]planPattern{
	sqlpkg.PostgreSQL: {
		{[]string{"Seq Scan"}, "Sequential scan detected - consider adding an index if this table is large"},
		{[]string{"Hash Join", "Seq Scan"}, "Hash join with sequential scan - an index on join columns may improve performance"},
		{[]string{"Nested Loop"}, "Nested loop join detected - ensure join columns are indexed for better performance"},
		{[]string{"Sort Method: external"}, "Sort operation spilled to disk - consider increasing work_mem or reducing result set"},
		{[]string{"Bitmap Heap Scan"}, "Bitmap heap scan detected - query may benefit from more selective conditions or better index coverage"},
	},
	sqlpkg.MSSQL: {
		{[]string{"Table Scan"}, "Table scan detected - consider adding an index if this table is large"},
		{[]string{"Clustered Index Scan"}, "Clustered index scan detected - a narrower index may help selective filters"},
		{[]string{"Nested Loops"}, "Nested loop join detected - ensure join columns are indexed for better performance"},
		{[]string{"Hash Match"}, "Hash join detected - an index on join columns may improve performance"},
		{[]string{"Sort("}, "Sort operation detected - consider adding an index to avoid sorting"},
	},
	sqlpkg.MySQL: {
		{[]string{"type=ALL"}, "Full table scan detected - consider adding an index if this table is large"},
		{[]string{"Using filesort"}, "Filesort detected - an index matching ORDER BY may avoid sorting"},
		{[]string{"Using temporary"}, "Temporary table used - review GROUP BY and DISTINCT clauses"},
		{[]string{"Using join buffer"}, "Join buffer used - ensure join columns are indexed for better performance"},
	},
	sqlpkg.SQLite: {
		{[]string{"SCAN "}, "Full table scan detected - consider adding an index if this table is large"},
		{[]string{"USE TEMP B-TREE"}, "Temporary b-tree used for sorting or grouping - an index may avoid it"},
	},
}

// PerformanceHints analyzes plan text and provides optimization suggestions.
func PerformanceHints(d sqlpkg.Dialect, planLines []string) []string {
	planText := strings.Join(planLines, "\n")

	var hints []string
	for _, p := range planPatterns[d] {
		if containsAll(planText, p.contains) {
			hints = append(hints, p.hint)
		}
	}

	if len(hints) == 0 {
		hints = append(hints, EfficientPlanHint)
	}
	return hints
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
