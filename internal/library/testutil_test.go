// internal/library/testutil_test.go
package library

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vmunix/reelmate/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A second connection would open a separate in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Apply(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

func mustAlbum(t *testing.T, s *Store, name string) {
	t.Helper()
	if _, err := s.EnsureAlbum(name, "/gallery/"+name); err != nil {
		t.Fatalf("EnsureAlbum: %v", err)
	}
}
