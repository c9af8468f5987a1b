package library

import (
	"errors"
	"fmt"
	"time"
)

func getAlbum(q querier, name string) (*Album, error) {
	a := &Album{}
	err := q.QueryRow(`SELECT id, name, path, created_at FROM albums WHERE name = ?`, name).
		Scan(&a.ID, &a.Name, &a.Path, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get album %q: %w", name, mapSQLiteError(err))
	}
	return a, nil
}

// GetAlbum returns the album with the given name.
// Returns ErrNotFound if it has not been created.
func (s *Store) GetAlbum(name string) (*Album, error) { return getAlbum(s.db, name) }

// GetAlbum returns the album with the given name within a transaction.
func (t *Tx) GetAlbum(name string) (*Album, error) { return getAlbum(t.tx, name) }

func ensureAlbum(q querier, name, path string) (*Album, error) {
	a, err := getAlbum(q, name)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	result, err := q.Exec(`INSERT INTO albums (name, path, created_at) VALUES (?, ?, ?)`, name, path, now)
	if err != nil {
		return nil, fmt.Errorf("insert album %q: %w", name, mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return &Album{ID: id, Name: name, Path: path, CreatedAt: now}, nil
}

// EnsureAlbum returns the named album, creating its row on first use.
func (s *Store) EnsureAlbum(name, path string) (*Album, error) { return ensureAlbum(s.db, name, path) }

// EnsureAlbum returns the named album within a transaction, creating it on first use.
func (t *Tx) EnsureAlbum(name, path string) (*Album, error) { return ensureAlbum(t.tx, name, path) }
