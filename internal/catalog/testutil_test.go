package catalog

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/reelmate/internal/library"
	"github.com/vmunix/reelmate/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err, "open db")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Apply(db), "apply schema")
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seed writes size bytes to dir/name (when size >= 0) and indexes it.
func seed(t *testing.T, db *sql.DB, dir string, a library.Asset, size int) *library.Asset {
	t.Helper()
	store := library.NewStore(db)
	_, err := store.EnsureAlbum(a.Album, dir)
	require.NoError(t, err)

	a.Path = filepath.Join(dir, a.Filename)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if size >= 0 {
		require.NoError(t, os.WriteFile(a.Path, make([]byte, size), 0644))
	}
	if a.MediaType == "" {
		a.MediaType = library.MediaVideo
	}
	require.NoError(t, store.AddAsset(&a))
	return &a
}

func at(minutes int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}
