// Package playground runs user-supplied SQL against the execution connection:
// validate, normalize dialect, advise, cap rows, execute.
package playground

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/adapters/datasource"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/advisor"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// Stage is a step of the execute pipeline.
type Stage string

const (
	StageReceived          Stage = "received"
	StageDialectNormalized Stage = "dialect_normalized"
	StageAdvised           Stage = "advised"
	StageLimitApplied      Stage = "limit_applied"
	StageExecuted          Stage = "executed"
)

// Default bounds used when Options leaves a field zero.
const (
	DefaultRowLimit         = 100
	DefaultPreviewLimit     = 5
	DefaultStatementTimeout = 30 * time.Second
)

// Options bounds what the executor returns and how long a statement may run.
type Options struct {
	RowLimit         int
	PreviewLimit     int
	StatementTimeout time.Duration
}

// Outcome is the result of Execute. Exactly one of Result and Error is set.
// On failure Suggestions holds the single suggestion of the classification.
type Outcome struct {
	Query       string                           `json:"query"`
	Stage       Stage                            `json:"stage"`
	Result      *datasource.QueryExecutionResult `json:"result,omitempty"`
	Error       *advisor.Classification          `json:"error,omitempty"`
	Suggestions []string                         `json:"suggestions"`
	Elapsed     time.Duration                    `json:"-"`
}

// Succeeded reports whether the statement executed.
func (o *Outcome) Succeeded() bool {
	return o.Error == nil
}

// Seconds returns the elapsed time in seconds for metrics.
func (o *Outcome) Seconds() float64 {
	return o.Elapsed.Seconds()
}

// Executor runs playground statements. Every call opens its own connection
// through the Connector and closes it before returning.
type Executor struct {
	connector datasource.Connector
	advisor   *advisor.Advisor
	opts      Options
	logger    *zap.Logger
}

// NewExecutor creates an Executor for the connector's dialect.
func NewExecutor(connector datasource.Connector, opts Options, logger *zap.Logger) *Executor {
	if opts.RowLimit <= 0 {
		opts.RowLimit = DefaultRowLimit
	}
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = DefaultPreviewLimit
	}
	if opts.StatementTimeout <= 0 {
		opts.StatementTimeout = DefaultStatementTimeout
	}
	return &Executor{
		connector: connector,
		advisor:   advisor.New(),
		opts:      opts,
		logger:    logger.Named("playground"),
	}
}

// Dialect returns the execution dialect.
func (e *Executor) Dialect() sqlpkg.Dialect {
	return e.connector.Dialect()
}

// Execute validates query, converts it from source to the execution dialect
// when they differ, collects advice, applies the row cap and runs it. An empty
// source means the query is already in the execution dialect. s may be nil.
//
// Failures never surface as an error value: they are classified into the
// Outcome so the caller can display a message and one suggestion.
func (e *Executor) Execute(ctx context.Context, query string, source sqlpkg.Dialect, s *schema.Schema) *Outcome {
	start := time.Now()
	out := &Outcome{Query: query, Stage: StageReceived}

	fail := func(err error) *Outcome {
		c := advisor.Classify(logging.SanitizeError(err))
		out.Error = &c
		out.Result = nil
		out.Suggestions = []string{c.Suggestion}
		out.Elapsed = time.Since(start)
		e.logger.Info("Playground query failed",
			zap.String("stage", string(out.Stage)),
			zap.String("category", c.Category),
			logging.Query(out.Query),
			logging.Error(err))
		return out
	}

	if err := sqlpkg.CheckQuery(query); err != nil {
		return fail(err)
	}
	out.Query = sqlpkg.ValidateAndNormalize(query).NormalizedSQL

	target := e.connector.Dialect()
	if source != "" && source != target {
		converted, err := sqlpkg.Convert(out.Query, target)
		if err != nil {
			return fail(err)
		}
		out.Query = converted
	}
	out.Stage = StageDialectNormalized

	suggestions := e.advisor.Suggest(out.Query, s)
	out.Stage = StageAdvised

	out.Query = sqlpkg.ApplyRowLimit(out.Query, target, e.opts.RowLimit)
	out.Stage = StageLimitApplied

	result, err := e.run(ctx, out.Query)
	if err != nil {
		return fail(err)
	}

	out.Stage = StageExecuted
	out.Result = result
	out.Suggestions = suggestions
	out.Elapsed = time.Since(start)

	e.logger.Debug("Playground query executed",
		zap.Int("rows", result.RowCount),
		zap.Duration("elapsed", out.Elapsed))
	return out
}

func (e *Executor) run(ctx context.Context, query string) (*datasource.QueryExecutionResult, error) {
	var result *datasource.QueryExecutionResult
	err := e.withConnection(ctx, func(ctx context.Context, exec datasource.QueryExecutor) error {
		var err error
		result, err = exec.Query(ctx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return result, nil
}

// withConnection opens a connection bounded by the statement timeout, runs
// fn and closes the connection.
func (e *Executor) withConnection(ctx context.Context, fn func(context.Context, datasource.QueryExecutor) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.StatementTimeout)
	defer cancel()

	exec, err := e.connector.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := exec.Close(); closeErr != nil {
			e.logger.Warn("Failed to close connection", logging.Error(closeErr))
		}
	}()

	return fn(ctx, exec)
}
