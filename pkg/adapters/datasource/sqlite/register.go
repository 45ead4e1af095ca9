package sqlite

import (
	"context"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Dialect:     sqlpkg.SQLite,
			DisplayName: "SQLite",
			Description: "Open a local SQLite database file (DB_DSN)",
		},
		QueryExecutorFactory: func(ctx context.Context, cc datasource.ConnectionConfig, logger *zap.Logger) (datasource.QueryExecutor, error) {
			return NewQueryExecutor(ctx, cc, logger)
		},
	})
}
