package mssql

import (
	"context"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Dialect:     sqlpkg.MSSQL,
			DisplayName: "Microsoft SQL Server",
			Description: "Connect to SQL Server 2016+ and Azure SQL Database",
		},
		QueryExecutorFactory: func(ctx context.Context, cc datasource.ConnectionConfig, logger *zap.Logger) (datasource.QueryExecutor, error) {
			cfg, err := FromConnectionConfig(cc)
			if err != nil {
				return nil, err
			}
			return NewQueryExecutor(ctx, cfg, logger)
		},
	})
}
