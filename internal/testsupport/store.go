package testsupport

import (
	"testing"

	"pagecompare/internal/config"
	"pagecompare/internal/history"
)

// MustOpenHistory opens the config's history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
