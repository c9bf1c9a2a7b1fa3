package testutil

import (
	"path/filepath"
	"testing"

	"github.com/HerbHall/campaigndesk/internal/store"
)

// NewStore opens a fresh database in a temp dir, migrates the given
// components, and closes it when the test ends.
func NewStore(t *testing.T, components ...store.Component) *store.SQLiteStore {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.MigrateAll(t.Context(), components...); err != nil {
		t.Fatalf("MigrateAll: %v", err)
	}
	return s
}
