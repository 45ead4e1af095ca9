package services

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/preferences"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// Session is the per-process application state: the selected dialect, the
// loaded schema and the most recent generated query. Handlers and CLI
// commands receive it explicitly.
type Session struct {
	mu      sync.RWMutex
	dialect sqlpkg.Dialect
	schema  *schema.Schema
	lastSQL string

	prefs  *preferences.Store
	logger *zap.Logger
}

// NewSession starts from the dialect saved in preferences, falling back to
// PostgreSQL when the saved value is unusable.
func NewSession(prefs *preferences.Store, logger *zap.Logger) *Session {
	s := &Session{
		dialect: sqlpkg.PostgreSQL,
		prefs:   prefs,
		logger:  logger.Named("session"),
	}
	if saved, ok := prefs.Get(preferences.KeyDialect); ok {
		if name, ok := saved.(string); ok {
			if d, err := sqlpkg.ParseDialect(name); err == nil {
				s.dialect = d
			}
		}
	}
	return s
}

// Dialect returns the selected output dialect.
func (s *Session) Dialect() sqlpkg.Dialect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dialect
}

// Schema returns the loaded schema, or nil.
func (s *Session) Schema() *schema.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema
}

// SetSchema replaces the loaded schema. nil clears it.
func (s *Session) SetSchema(sc *schema.Schema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = sc
}

// LoadSchema parses a schema document and makes it the session schema.
func (s *Session) LoadSchema(data []byte, format schema.Format) (*schema.Schema, error) {
	sc, err := schema.Parse(data, format)
	if err != nil {
		return nil, err
	}
	s.SetSchema(sc)
	s.logger.Info("Loaded schema", zap.Int("tables", len(sc.Tables)))
	return sc, nil
}

// LastSQL returns the most recently generated query.
func (s *Session) LastSQL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSQL
}

func (s *Session) setLastSQL(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSQL = q
}

// SelectDialect switches the output dialect, persists the choice and
// converts the last generated query. It returns the (possibly converted)
// last query.
func (s *Session) SelectDialect(name string) (string, error) {
	d, err := sqlpkg.ParseDialect(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d == s.dialect {
		return s.lastSQL, nil
	}
	if err := s.prefs.Update(preferences.KeyDialect, string(d)); err != nil {
		return "", fmt.Errorf("save dialect: %w", err)
	}
	s.dialect = d

	if s.lastSQL != "" {
		converted, err := sqlpkg.Convert(s.lastSQL, d)
		if err != nil {
			return "", err
		}
		s.lastSQL = converted
	}

	s.logger.Debug("Selected dialect", zap.String("dialect", string(d)))
	return s.lastSQL, nil
}
