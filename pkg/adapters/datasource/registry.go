package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// AdapterInfo describes a registered adapter for discovery endpoints.
type AdapterInfo struct {
	Dialect     sqlpkg.Dialect `json:"dialect"`
	DisplayName string         `json:"display_name"` // "PostgreSQL", "Microsoft SQL Server"
	Description string         `json:"description"`
}

// ExecutorFactory opens a new connection described by cfg.
type ExecutorFactory func(ctx context.Context, cfg ConnectionConfig, logger *zap.Logger) (QueryExecutor, error)

// AdapterRegistration contains info + the factory for creating executors.
type AdapterRegistration struct {
	Info                 AdapterInfo
	QueryExecutorFactory ExecutorFactory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[sqlpkg.Dialect]AdapterRegistration)
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg AdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Dialect] = reg
}

// RegisteredAdapters returns info for all registered adapters, ordered by dialect.
func RegisteredAdapters() []AdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]AdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Dialect < result[j].Dialect })
	return result
}

// GetQueryExecutorFactory returns the executor factory for a dialect.
// Returns nil if the dialect is not registered.
func GetQueryExecutorFactory(d sqlpkg.Dialect) ExecutorFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[d]; ok {
		return reg.QueryExecutorFactory
	}
	return nil
}

// IsRegistered checks if an adapter for the dialect is available.
func IsRegistered(d sqlpkg.Dialect) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[d]
	return ok
}

// Connector opens a fresh executor for one unit of work. Callers close the
// executor when the work is done; no connection outlives a call.
type Connector interface {
	Dialect() sqlpkg.Dialect
	Connect(ctx context.Context) (QueryExecutor, error)
}

type registryConnector struct {
	dialect sqlpkg.Dialect
	factory ExecutorFactory
	cfg     ConnectionConfig
	logger  *zap.Logger
}

// NewConnector returns a Connector backed by the registered adapter for d.
func NewConnector(d sqlpkg.Dialect, cfg ConnectionConfig, logger *zap.Logger) (Connector, error) {
	factory := GetQueryExecutorFactory(d)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s (no adapter registered)", apperrors.ErrUnsupportedDialect, d)
	}
	return &registryConnector{
		dialect: d,
		factory: factory,
		cfg:     cfg,
		logger:  logger.Named("datasource").With(zap.String("dialect", string(d))),
	}, nil
}

func (c *registryConnector) Dialect() sqlpkg.Dialect { return c.dialect }

func (c *registryConnector) Connect(ctx context.Context) (QueryExecutor, error) {
	exec, err := c.factory(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", apperrors.ErrExecutionFailed, err)
	}
	return exec, nil
}

// Ensure registryConnector implements Connector at compile time.
var _ Connector = (*registryConnector)(nil)
