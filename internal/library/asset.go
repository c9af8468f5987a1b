package library

import (
	"fmt"
	"strings"
	"time"
)

const assetColumns = `id, album, filename, path, media_type, origin, size_bytes, title, source_url, quality, platform, created_at`

func scanAsset(scan func(dest ...any) error) (*Asset, error) {
	a := &Asset{}
	err := scan(&a.ID, &a.Album, &a.Filename, &a.Path, &a.MediaType, &a.Origin, &a.SizeBytes,
		&a.Title, &a.SourceURL, &a.Quality, &a.Platform, &a.CreatedAt)
	return a, err
}

func addAsset(q querier, a *Asset) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.Origin == "" {
		a.Origin = OriginDownload
	}
	result, err := q.Exec(`
		INSERT INTO assets (album, filename, path, media_type, origin, size_bytes, title, source_url, quality, platform, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Album, a.Filename, a.Path, a.MediaType, a.Origin, a.SizeBytes, a.Title, a.SourceURL, a.Quality, a.Platform, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert asset: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	a.ID = id
	return nil
}

// AddAsset inserts a new asset.
// Sets ID, and CreatedAt when it is zero.
func (s *Store) AddAsset(a *Asset) error { return addAsset(s.db, a) }

// AddAsset inserts a new asset within a transaction.
func (t *Tx) AddAsset(a *Asset) error { return addAsset(t.tx, a) }

func getAsset(q querier, id int64) (*Asset, error) {
	a, err := scanAsset(q.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id).Scan)
	if err != nil {
		return nil, fmt.Errorf("get asset %d: %w", id, mapSQLiteError(err))
	}
	return a, nil
}

// GetAsset retrieves an asset by ID.
// Returns ErrNotFound if the asset does not exist.
func (s *Store) GetAsset(id int64) (*Asset, error) { return getAsset(s.db, id) }

// GetAsset retrieves an asset by ID within a transaction.
func (t *Tx) GetAsset(id int64) (*Asset, error) { return getAsset(t.tx, id) }

func getAssetByPath(q querier, path string) (*Asset, error) {
	a, err := scanAsset(q.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE path = ?`, path).Scan)
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", path, mapSQLiteError(err))
	}
	return a, nil
}

// GetAssetByPath retrieves an asset by its file path.
func (s *Store) GetAssetByPath(path string) (*Asset, error) { return getAssetByPath(s.db, path) }

// GetAssetByPath retrieves an asset by its file path within a transaction.
func (t *Tx) GetAssetByPath(path string) (*Asset, error) { return getAssetByPath(t.tx, path) }

func buildAssetWhere(f AssetFilter) (string, []any) {
	var conditions []string
	var args []any

	if f.Album != nil {
		conditions = append(conditions, "album = ?")
		args = append(args, *f.Album)
	}
	if f.MediaType != nil {
		conditions = append(conditions, "media_type = ?")
		args = append(args, *f.MediaType)
	}
	if f.Origin != nil {
		conditions = append(conditions, "origin = ?")
		args = append(args, *f.Origin)
	}
	if f.Platform != nil {
		conditions = append(conditions, "platform = ?")
		args = append(args, *f.Platform)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func listAssets(q querier, f AssetFilter) ([]*Asset, int, error) {
	whereClause, args := buildAssetWhere(f)

	var total int
	if err := q.QueryRow("SELECT COUNT(*) FROM assets "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}

	query := "SELECT " + assetColumns + " FROM assets " + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Asset
	for rows.Next() {
		a, err := scanAsset(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan asset: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate assets: %w", err)
	}

	return results, total, nil
}

// ListAssets returns assets matching the filter, newest first.
// Returns (results, totalCount, error).
func (s *Store) ListAssets(f AssetFilter) ([]*Asset, int, error) { return listAssets(s.db, f) }

// ListAssets returns assets matching the filter within a transaction.
func (t *Tx) ListAssets(f AssetFilter) ([]*Asset, int, error) { return listAssets(t.tx, f) }

func updateAssetSize(q querier, id, size int64) error {
	result, err := q.Exec(`UPDATE assets SET size_bytes = ? WHERE id = ?`, size, id)
	if err != nil {
		return fmt.Errorf("update asset %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update asset %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateAssetSize records the on-disk size of an asset.
// Returns ErrNotFound if the asset does not exist.
func (s *Store) UpdateAssetSize(id, size int64) error { return updateAssetSize(s.db, id, size) }

func deleteAsset(q querier, id int64) error {
	_, err := q.Exec("DELETE FROM assets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete asset %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

// DeleteAsset removes an asset row by ID.
// This operation is idempotent - no error is returned if the asset does not exist.
func (s *Store) DeleteAsset(id int64) error { return deleteAsset(s.db, id) }

// DeleteAsset removes an asset row by ID within a transaction.
func (t *Tx) DeleteAsset(id int64) error { return deleteAsset(t.tx, id) }

// AlbumUsage is the asset count and byte total of one album.
type AlbumUsage struct {
	Count      int
	TotalBytes int64
	Oldest     *time.Time
	Newest     *time.Time
}

// Usage summarizes assets matching the filter. Limit and Offset are ignored.
func (s *Store) Usage(f AssetFilter) (*AlbumUsage, error) {
	whereClause, args := buildAssetWhere(f)

	u := &AlbumUsage{}
	var oldest, newest *string
	err := s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(size_bytes), 0), MIN(created_at), MAX(created_at) FROM assets "+whereClause,
		args...,
	).Scan(&u.Count, &u.TotalBytes, &oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("asset usage: %w", err)
	}
	u.Oldest = parseSQLiteTime(oldest)
	u.Newest = parseSQLiteTime(newest)
	return u, nil
}

// parseSQLiteTime parses aggregate timestamps, which come back as text.
func parseSQLiteTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}
