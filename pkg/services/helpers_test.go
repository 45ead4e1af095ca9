package services

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/preferences"
)

type testStores struct {
	history *history.Store
	prefs   *preferences.Store
	session *Session
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	dir := t.TempDir()
	prefs := preferences.Open(filepath.Join(dir, "user_preferences.json"), nil, zap.NewNop())
	return testStores{
		history: history.Open(filepath.Join(dir, "query_history.json"), zap.NewNop()),
		prefs:   prefs,
		session: NewSession(prefs, zap.NewNop()),
	}
}
