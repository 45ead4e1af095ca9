package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/playground"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/preferences"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// ExecutorFactory builds a playground executor for a connection.
type ExecutorFactory func(cc datasource.ConnectionConfig) (*playground.Executor, error)

// NewExecutorFactory returns a factory creating executors for dialect d.
func NewExecutorFactory(d sqlpkg.Dialect, opts playground.Options, logger *zap.Logger) ExecutorFactory {
	return func(cc datasource.ConnectionConfig) (*playground.Executor, error) {
		connector, err := datasource.NewConnector(d, cc, logger)
		if err != nil {
			return nil, err
		}
		return playground.NewExecutor(connector, opts, logger), nil
	}
}

// PlaygroundService executes playground statements in the session dialect
// and records every execution in the performance metrics.
type PlaygroundService interface {
	Execute(ctx context.Context, query string) (*playground.Outcome, error)
	ListTables(ctx context.Context) ([]string, error)
	TablePreview(ctx context.Context, table string) (*datasource.QueryExecutionResult, error)
	TableStats(ctx context.Context, table string) (*playground.TableStats, error)
	Explain(ctx context.Context, query string) (*datasource.ExplainResult, error)
	DatabaseSchema(ctx context.Context) (*schema.Schema, error)
	UseProfile(name string) error
	Dialect() sqlpkg.Dialect
}

type playgroundService struct {
	mu       sync.RWMutex
	executor *playground.Executor
	factory  ExecutorFactory
	sslMode  string

	session *Session
	prefs   *preferences.Store
	logger  *zap.Logger
}

// NewPlaygroundService creates the service around the configured connection.
// sslMode is applied to connections opened from saved profiles.
func NewPlaygroundService(
	factory ExecutorFactory,
	cc datasource.ConnectionConfig,
	session *Session,
	prefs *preferences.Store,
	logger *zap.Logger,
) (PlaygroundService, error) {
	executor, err := factory(cc)
	if err != nil {
		return nil, err
	}
	return &playgroundService{
		executor: executor,
		factory:  factory,
		sslMode:  cc.SSLMode,
		session:  session,
		prefs:    prefs,
		logger:   logger.Named("playground-service"),
	}, nil
}

var _ PlaygroundService = (*playgroundService)(nil)

func (s *playgroundService) current() *playground.Executor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executor
}

// Dialect returns the execution dialect.
func (s *playgroundService) Dialect() sqlpkg.Dialect {
	return s.current().Dialect()
}

// Execute treats query as written in the session dialect. The outcome, not
// the error, carries execution failures; the error reports a metrics write
// failure only.
func (s *playgroundService) Execute(ctx context.Context, query string) (*playground.Outcome, error) {
	out := s.current().Execute(ctx, query, s.session.Dialect(), s.session.Schema())
	if _, err := s.prefs.UpdateMetrics(out.Seconds(), out.Succeeded()); err != nil {
		return out, err
	}
	return out, nil
}

func (s *playgroundService) ListTables(ctx context.Context) ([]string, error) {
	return s.current().ListTables(ctx)
}

func (s *playgroundService) TablePreview(ctx context.Context, table string) (*datasource.QueryExecutionResult, error) {
	return s.current().TablePreview(ctx, table)
}

func (s *playgroundService) TableStats(ctx context.Context, table string) (*playground.TableStats, error) {
	return s.current().TableStats(ctx, table)
}

func (s *playgroundService) Explain(ctx context.Context, query string) (*datasource.ExplainResult, error) {
	return s.current().Explain(ctx, query)
}

// DatabaseSchema introspects the execution database.
func (s *playgroundService) DatabaseSchema(ctx context.Context) (*schema.Schema, error) {
	return s.current().Schema(ctx)
}

// UseProfile points the playground at a saved connection profile.
func (s *playgroundService) UseProfile(name string) error {
	profile, err := s.prefs.ResolveProfile(name)
	if err != nil {
		return err
	}
	cc, err := ConnectionFromProfile(profile, s.sslMode)
	if err != nil {
		return err
	}
	executor, err := s.factory(cc)
	if err != nil {
		return fmt.Errorf("use profile %q: %w", name, err)
	}

	s.mu.Lock()
	s.executor = executor
	s.mu.Unlock()

	s.logger.Info("Switched playground connection", zap.String("profile", name))
	return nil
}
