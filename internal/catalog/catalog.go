package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/reelmate/internal/library"
)

// DefaultFetchLimit caps List when the config leaves it unset.
const DefaultFetchLimit = 2000

// statConcurrency bounds parallel os.Stat calls in List.
const statConcurrency = 8

// ErrNotFound is returned for IDs that are not videos in the album.
var ErrNotFound = errors.New("download not found")

// Remover deletes an asset's file and index row.
type Remover interface {
	Remove(ctx context.Context, id int64) (*library.Asset, error)
}

// Catalog reads download records from the album. It never writes, except
// through Delete.
type Catalog struct {
	store   *library.Store
	remover Remover
	album   string
	limit   int
	log     *slog.Logger
}

// Config for the catalog.
type Config struct {
	Album      string
	FetchLimit int
}

// New creates a catalog over the asset index in db.
func New(db *sql.DB, cfg Config, remover Remover, log *slog.Logger) *Catalog {
	limit := cfg.FetchLimit
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	return &Catalog{
		store:   library.NewStore(db),
		remover: remover,
		album:   cfg.Album,
		limit:   limit,
		log:     log,
	}
}

// List returns the album's videos, newest first, capped at the fetch
// limit. Each file is stat'ed for its current size; files that cannot be
// stat'ed are kept with SizeText set to UnknownSize.
func (c *Catalog) List(ctx context.Context) ([]Record, error) {
	album := c.album
	video := library.MediaVideo
	assets, _, err := c.store.ListAssets(library.AssetFilter{
		Album:     &album,
		MediaType: &video,
		Limit:     c.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list album %s: %w", c.album, err)
	}

	records := make([]Record, len(assets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(statConcurrency)
	for i, a := range assets {
		records[i] = FromAsset(a)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := os.Stat(a.Path)
			if err != nil || info.IsDir() {
				c.log.Debug("size unavailable", "asset_id", a.ID, "path", a.Path, "error", err)
				records[i].setSize(0, false)
				return nil
			}
			records[i].setSize(info.Size(), true)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortNewestFirst(records)
	return records, nil
}

func sortNewestFirst(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}

// Get returns one record with its live size.
func (c *Catalog) Get(ctx context.Context, id int64) (*Record, error) {
	a, err := c.store.GetAsset(id)
	if errors.Is(err, library.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if a.Album != c.album || a.MediaType != library.MediaVideo {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	r := FromAsset(a)
	if info, err := os.Stat(a.Path); err == nil && !info.IsDir() {
		r.setSize(info.Size(), true)
	} else {
		r.setSize(0, false)
	}
	return &r, nil
}

// Delete removes a downloaded video from the album and the index.
func (c *Catalog) Delete(ctx context.Context, id int64) (*Record, error) {
	r, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.remover == nil {
		return nil, errors.New("catalog is read-only")
	}
	if _, err := c.remover.Remove(ctx, id); err != nil {
		return nil, fmt.Errorf("delete %d: %w", id, err)
	}
	c.log.Info("download deleted", "id", id, "title", r.Title)
	return r, nil
}

// Stats summarizes storage used by the album.
type Stats struct {
	Videos       int            `json:"videos"`
	VideoBytes   int64          `json:"video_bytes"`
	UnknownSizes int            `json:"unknown_sizes"`
	AllAssets    int            `json:"all_assets"` // videos and images, from the index
	AllBytes     int64          `json:"all_bytes"`
	Newest       *time.Time     `json:"newest,omitempty"`
	ByPlatform   map[string]int `json:"by_platform"`
}

// Stats totals the live sizes of the listed videos and the indexed size of
// everything in the album.
func (c *Catalog) Stats(ctx context.Context) (*Stats, error) {
	records, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	s := &Stats{ByPlatform: make(map[string]int)}
	for _, r := range records {
		s.Videos++
		if r.SizeKnown {
			s.VideoBytes += r.SizeBytes
		} else {
			s.UnknownSizes++
		}
		platform := r.Platform
		if platform == "" {
			platform = "unknown"
		}
		s.ByPlatform[platform]++
	}
	if len(records) > 0 {
		newest := records[0].CreatedAt
		s.Newest = &newest
	}

	album := c.album
	usage, err := c.store.Usage(library.AssetFilter{Album: &album})
	if err != nil {
		return nil, err
	}
	s.AllAssets = usage.Count
	s.AllBytes = usage.TotalBytes
	return s, nil
}

// FilterPlatform keeps records from the given platform. An empty platform
// keeps everything.
func FilterPlatform(records []Record, platform string) []Record {
	if platform == "" {
		return records
	}
	var out []Record
	for _, r := range records {
		if strings.EqualFold(r.Platform, platform) {
			out = append(out, r)
		}
	}
	return out
}
