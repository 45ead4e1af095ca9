package playground

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// ColumnStats counts NULLs and distinct values of one column.
type ColumnStats struct {
	NullCount     int64 `json:"null_count"`
	DistinctCount int64 `json:"distinct_count"`
}

// TableStats summarizes a table.
type TableStats struct {
	Table       string                 `json:"table"`
	RowCount    int64                  `json:"row_count"`
	ColumnStats map[string]ColumnStats `json:"column_stats"`
}

// Schema introspects the execution database.
func (e *Executor) Schema(ctx context.Context) (*schema.Schema, error) {
	var s *schema.Schema
	err := e.withConnection(ctx, func(ctx context.Context, exec datasource.QueryExecutor) error {
		var err error
		s, err = exec.DiscoverSchema(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: discover schema: %w", apperrors.ErrExecutionFailed, err)
	}
	return s, nil
}

// ListTables returns the table names of the execution database, sorted.
// Tables outside the dialect's default schema are "schema.table".
func (e *Executor) ListTables(ctx context.Context) ([]string, error) {
	s, err := e.Schema(ctx)
	if err != nil {
		return nil, err
	}
	return s.TableNames(), nil
}

// TablePreview returns the first PreviewLimit rows of table. The name must be
// a plain identifier naming an existing table.
func (e *Executor) TablePreview(ctx context.Context, table string) (*datasource.QueryExecutionResult, error) {
	if err := sqlpkg.CheckIdentifier(table); err != nil {
		return nil, err
	}

	var result *datasource.QueryExecutionResult
	err := e.withConnection(ctx, func(ctx context.Context, exec datasource.QueryExecutor) error {
		if _, err := lookupTable(ctx, exec, table); err != nil {
			return err
		}
		query := sqlpkg.ApplyRowLimit("SELECT * FROM "+exec.QuoteIdentifier(table), exec.Dialect(), e.opts.PreviewLimit)

		var err error
		result, err = exec.Query(ctx, query)
		return err
	})
	if err != nil {
		return nil, wrapExecution("preview "+table, err)
	}
	return result, nil
}

// TableStats counts rows and, per column, NULLs and distinct values in a
// single aggregate statement.
func (e *Executor) TableStats(ctx context.Context, table string) (*TableStats, error) {
	if err := sqlpkg.CheckIdentifier(table); err != nil {
		return nil, err
	}

	stats := &TableStats{Table: table, ColumnStats: map[string]ColumnStats{}}
	err := e.withConnection(ctx, func(ctx context.Context, exec datasource.QueryExecutor) error {
		t, err := lookupTable(ctx, exec, table)
		if err != nil {
			return err
		}

		columns := t.ColumnNames()
		selects := []string{"COUNT(*) AS row_count"}
		for i, col := range columns {
			quoted := exec.QuoteIdentifier(col)
			selects = append(selects,
				fmt.Sprintf("COUNT(*) - COUNT(%s) AS n%d", quoted, i),
				fmt.Sprintf("COUNT(DISTINCT %s) AS d%d", quoted, i))
		}
		query := "SELECT " + strings.Join(selects, ", ") + " FROM " + exec.QuoteIdentifier(table)

		result, err := exec.Query(ctx, query)
		if err != nil {
			return err
		}
		if result.RowCount == 0 {
			return fmt.Errorf("stats query returned no rows")
		}
		row := result.Rows[0]

		stats.RowCount = toInt64(row["row_count"])
		for i, col := range columns {
			stats.ColumnStats[col] = ColumnStats{
				NullCount:     toInt64(row[fmt.Sprintf("n%d", i)]),
				DistinctCount: toInt64(row[fmt.Sprintf("d%d", i)]),
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapExecution("stats "+table, err)
	}
	return stats, nil
}

// Explain validates query and returns the execution plan without running it.
func (e *Executor) Explain(ctx context.Context, query string) (*datasource.ExplainResult, error) {
	if err := sqlpkg.CheckQuery(query); err != nil {
		return nil, err
	}
	normalized := sqlpkg.ValidateAndNormalize(query).NormalizedSQL

	var plan *datasource.ExplainResult
	err := e.withConnection(ctx, func(ctx context.Context, exec datasource.QueryExecutor) error {
		var err error
		plan, err = exec.ExplainQuery(ctx, normalized)
		return err
	})
	if err != nil {
		e.logger.Info("Explain failed", logging.Query(normalized), logging.Error(err))
		return nil, wrapExecution("explain", err)
	}

	e.logger.Debug("Explained query", zap.Int("hints", len(plan.PerformanceHints)))
	return plan, nil
}

// lookupTable finds table in the introspected schema.
func lookupTable(ctx context.Context, exec datasource.QueryExecutor, table string) (schema.Table, error) {
	s, err := exec.DiscoverSchema(ctx)
	if err != nil {
		return schema.Table{}, err
	}
	t, ok := s.Tables[table]
	if !ok {
		return schema.Table{}, fmt.Errorf("table %q: %w", table, apperrors.ErrNotFound)
	}
	return t, nil
}

// wrapExecution tags driver failures with ErrExecutionFailed, leaving
// sentinel errors from the lookup untouched.
func wrapExecution(op string, err error) error {
	if apperrors.Kind(err) != "internal_error" {
		return err
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrExecutionFailed, op, err)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i
	case []byte:
		i, _ := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
		return i
	default:
		return 0
	}
}
