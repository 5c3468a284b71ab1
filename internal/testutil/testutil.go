// Package testutil provides shared test fixtures.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/lherron/sitemerge/internal/db"
	"github.com/lherron/sitemerge/internal/store"
)

// TempDB creates a migrated database in a temporary directory. The
// database is closed and removed when the test finishes.
func TempDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return database
}

// TempStore creates a store backed by a temporary migrated database.
func TempStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(TempDB(t))
}
