// Package importer copies media files into a gallery album and records them
// in the asset index.
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmunix/reelmate/internal/events"
	"github.com/vmunix/reelmate/internal/library"
)

// Importer writes files into one album under the gallery root.
type Importer struct {
	library *library.Store
	root    string
	album   string
	bus     events.Publisher // nil disables events
	log     *slog.Logger
}

// Config for the importer.
type Config struct {
	Root  string // gallery root; albums are its subdirectories
	Album string
}

// New creates a new importer.
func New(db *sql.DB, cfg Config, bus events.Publisher, log *slog.Logger) *Importer {
	return &Importer{
		library: library.NewStore(db),
		root:    cfg.Root,
		album:   cfg.Album,
		bus:     bus,
		log:     log,
	}
}

// Album returns the album name imports go to.
func (i *Importer) Album() string { return i.album }

// AlbumDir returns the album's directory.
func (i *Importer) AlbumDir() string { return filepath.Join(i.root, i.album) }

// Request describes one file to import.
type Request struct {
	SourcePath string
	Filename   string // desired name in the album; suffixed on collision
	Origin     library.Origin
	Title      string
	SourceURL  string
	Quality    string
	Platform   string
}

// Import copies the source into the album and records the asset.
// The album is created on first use. Existing files are never overwritten.
func (i *Importer) Import(ctx context.Context, req Request) (*library.Asset, error) {
	dir, name, mediaType, err := i.prepare(req)
	if err != nil {
		return nil, err
	}

	i.log.Debug("import started", "src", req.SourcePath, "album", i.album, "name", name)

	dest, size, err := claimFile(ctx, req.SourcePath, dir, name)
	if err != nil {
		return nil, err
	}

	asset := &library.Asset{
		Album:     i.album,
		Filename:  filepath.Base(dest),
		Path:      dest,
		MediaType: mediaType,
		Origin:    req.Origin,
		SizeBytes: size,
		Title:     req.Title,
		SourceURL: req.SourceURL,
		Quality:   req.Quality,
		Platform:  req.Platform,
	}
	if err := i.record(asset, dir); err != nil {
		// The file has no index row; remove it so the album and the index agree.
		if rmErr := os.Remove(dest); rmErr != nil {
			i.log.Warn("remove orphaned import failed", "path", dest, "error", rmErr)
		}
		return nil, err
	}

	i.publish(ctx, asset)
	i.log.Info("import complete", "asset_id", asset.ID, "path", asset.Path, "size_bytes", asset.SizeBytes)
	return asset, nil
}

func (i *Importer) prepare(req Request) (dir, name string, mediaType library.MediaType, err error) {
	if i.root == "" || i.album == "" {
		return "", "", "", errors.New("importer: gallery root and album are required")
	}
	if _, err := os.Stat(req.SourcePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", "", fmt.Errorf("%w: %s", ErrSourceMissing, req.SourcePath)
		}
		return "", "", "", fmt.Errorf("stat source: %w", err)
	}

	name = SanitizeFilename(req.Filename)
	if name == "" {
		name = SanitizeFilename(filepath.Base(req.SourcePath))
	}
	switch {
	case IsVideoFile(name):
		mediaType = library.MediaVideo
	case IsImageFile(name):
		mediaType = library.MediaImage
	default:
		return "", "", "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, name)
	}

	dir = i.AlbumDir()
	if err := ValidatePath(filepath.Join(dir, name), dir); err != nil {
		return "", "", "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", "", fmt.Errorf("create album %s: %w", i.album, err)
	}
	return dir, name, mediaType, nil
}

// record writes the album and asset rows in one transaction.
func (i *Importer) record(asset *library.Asset, dir string) error {
	return i.library.InTx(func(tx *library.Tx) error {
		if _, err := tx.EnsureAlbum(i.album, dir); err != nil {
			return fmt.Errorf("ensure album: %w", err)
		}
		if err := tx.AddAsset(asset); err != nil {
			return fmt.Errorf("add asset: %w", err)
		}
		return nil
	})
}

func (i *Importer) publish(ctx context.Context, a *library.Asset) {
	if i.bus == nil {
		return
	}
	_ = i.bus.Publish(ctx, &events.AssetImported{
		BaseEvent: events.NewBaseEvent(events.EventAssetImported, events.EntityAsset, a.ID),
		Album:     a.Album,
		Path:      a.Path,
		MediaType: string(a.MediaType),
		Origin:    string(a.Origin),
		SizeBytes: a.SizeBytes,
	})
}

// Remove deletes an asset's file and its index row. A file that is already
// gone is not an error.
func (i *Importer) Remove(ctx context.Context, id int64) (*library.Asset, error) {
	asset, err := i.library.GetAsset(id)
	if err != nil {
		return nil, err
	}
	if err := ValidatePath(asset.Path, i.root); err != nil {
		return nil, err
	}
	if err := os.Remove(asset.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove %s: %w", asset.Path, err)
	}
	if err := i.library.DeleteAsset(id); err != nil {
		return nil, err
	}

	if i.bus != nil {
		_ = i.bus.Publish(ctx, &events.AssetDeleted{
			BaseEvent: events.NewBaseEvent(events.EventAssetDeleted, events.EntityAsset, id),
			Path:      asset.Path,
			Title:     asset.Title,
		})
	}
	i.log.Info("asset removed", "asset_id", id, "path", asset.Path)
	return asset, nil
}

// RescanResult reports what Rescan found.
type RescanResult struct {
	Added   []*library.Asset
	Missing []*library.Asset // indexed but no longer on disk
}

// Rescan indexes media files found in the album directory that have no
// asset row, using the file's modification time as its creation time.
// Rows whose files are gone are reported, not deleted.
func (i *Importer) Rescan(ctx context.Context) (*RescanResult, error) {
	dir := i.AlbumDir()
	result := &RescanResult{}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		entries = nil
	} else if err != nil {
		return nil, fmt.Errorf("read album: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		var mediaType library.MediaType
		switch {
		case IsVideoFile(name):
			mediaType = library.MediaVideo
		case IsImageFile(name):
			mediaType = library.MediaImage
		default:
			continue
		}

		path := filepath.Join(dir, name)
		if _, err := i.library.GetAssetByPath(path); err == nil {
			continue
		} else if !errors.Is(err, library.ErrNotFound) {
			return nil, err
		}

		info, err := entry.Info()
		if err != nil {
			i.log.Warn("stat during rescan failed", "path", path, "error", err)
			continue
		}
		asset := &library.Asset{
			Album:     i.album,
			Filename:  name,
			Path:      path,
			MediaType: mediaType,
			Origin:    library.OriginRescan,
			SizeBytes: info.Size(),
			Title:     titleFromFilename(name),
			Quality:   qualityFromFilename(name),
			CreatedAt: info.ModTime(),
		}
		if err := i.record(asset, dir); err != nil {
			return nil, err
		}
		i.publish(ctx, asset)
		result.Added = append(result.Added, asset)
	}

	album := i.album
	indexed, _, err := i.library.ListAssets(library.AssetFilter{Album: &album})
	if err != nil {
		return nil, err
	}
	for _, a := range indexed {
		if _, err := os.Stat(a.Path); errors.Is(err, os.ErrNotExist) {
			result.Missing = append(result.Missing, a)
		}
	}

	i.log.Info("rescan complete", "album", i.album, "added", len(result.Added), "missing", len(result.Missing))
	return result, nil
}
