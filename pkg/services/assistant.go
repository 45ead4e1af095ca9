package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/advisor"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/llm"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/preferences"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// InvalidGeneratedSQL is the message classified when a provider returns
// text that fails validation.
const InvalidGeneratedSQL = "Invalid SQL query generated"

// GenerateRequest asks for one natural-language translation. Schema and
// Dialect default to the session's values when empty.
type GenerateRequest struct {
	NaturalQuery string         `json:"natural_query"`
	Schema       *schema.Schema `json:"schema,omitempty"`
	Dialect      string         `json:"dialect,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
}

// GenerateResult is the outcome of Generate. Exactly one of SQL and Error
// is set.
type GenerateResult struct {
	SQL           string                  `json:"sql,omitempty"`
	Dialect       string                  `json:"dialect"`
	Suggestions   []string                `json:"suggestions"`
	Record        *history.Record         `json:"record,omitempty"`
	Error         *advisor.Classification `json:"error,omitempty"`
	ExecutionTime float64                 `json:"execution_time"`
}

// AssistantService turns natural language into validated SQL.
type AssistantService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

type assistantService struct {
	generator llm.SQLGenerator
	session   *Session
	history   *history.Store
	prefs     *preferences.Store
	advisor   *advisor.Advisor
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAssistantService wires the generation workflow. timeout bounds each
// provider call; zero selects llm.DefaultTimeout.
func NewAssistantService(
	generator llm.SQLGenerator,
	session *Session,
	historyStore *history.Store,
	prefs *preferences.Store,
	timeout time.Duration,
	logger *zap.Logger,
) AssistantService {
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}
	return &assistantService{
		generator: generator,
		session:   session,
		history:   historyStore,
		prefs:     prefs,
		advisor:   advisor.New(),
		timeout:   timeout,
		logger:    logger.Named("assistant-service"),
	}
}

var _ AssistantService = (*assistantService)(nil)

// Generate runs prompt → provider → validate → advise → convert → record.
// Provider and validation failures are returned as a classified result, not
// an error; the error return is reserved for bad input and persistence.
func (s *assistantService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	nl := strings.TrimSpace(req.NaturalQuery)
	if nl == "" {
		return nil, fmt.Errorf("%w: natural language query is required", apperrors.ErrValidationRejected)
	}

	dialect := s.session.Dialect()
	if req.Dialect != "" {
		d, err := sqlpkg.ParseDialect(req.Dialect)
		if err != nil {
			return nil, err
		}
		dialect = d
	}

	sc := req.Schema
	if sc == nil {
		sc = s.session.Schema()
	}

	start := time.Now()
	result := &GenerateResult{Dialect: string(dialect), Suggestions: []string{}}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	generated, err := s.generator.GenerateSQL(genCtx, nl, sc)
	cancel()
	if err != nil {
		s.logger.Error("Generation failed",
			zap.String("provider", s.generator.Provider()),
			zap.String("error_type", string(llm.GetErrorType(err))),
			logging.Error(err))
		c := advisor.Classify(logging.SanitizeError(err))
		result.Error = &c
		result.Suggestions = []string{c.Suggestion}
		result.ExecutionTime = time.Since(start).Seconds()
		return result, nil
	}

	if !sqlpkg.Validate(generated) {
		c := advisor.Classify(InvalidGeneratedSQL)
		result.Error = &c
		result.Suggestions = []string{c.Suggestion}
		result.ExecutionTime = time.Since(start).Seconds()

		s.logger.Warn("Provider returned invalid SQL", logging.Query(generated))
		if _, err := s.prefs.UpdateMetrics(result.ExecutionTime, false); err != nil {
			return nil, err
		}
		return result, nil
	}

	result.Suggestions = s.advisor.Suggest(generated, sc)

	final, err := sqlpkg.Convert(generated, dialect)
	if err != nil {
		return nil, err
	}
	result.SQL = final
	result.ExecutionTime = time.Since(start).Seconds()

	if _, err := s.prefs.UpdateMetrics(result.ExecutionTime, true); err != nil {
		return nil, err
	}

	record, err := s.history.Add(nl, final, string(dialect), req.Tags)
	if err != nil {
		return nil, err
	}
	result.Record = &record
	s.session.setLastSQL(final)

	s.logger.Info("Generated SQL",
		zap.String("provider", s.generator.Provider()),
		zap.String("dialect", string(dialect)),
		zap.Int("suggestions", len(result.Suggestions)),
		zap.Float64("seconds", result.ExecutionTime))
	return result, nil
}
