// Package status lists and saves media from a messaging app's status
// folder once the user has granted access to it.
package status

//go:generate mockgen -destination=mocks/status.go -package=mocks . Consent,Importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vmunix/reelmate/internal/apperr"
	"github.com/vmunix/reelmate/internal/events"
	"github.com/vmunix/reelmate/internal/grant"
	"github.com/vmunix/reelmate/internal/importer"
	"github.com/vmunix/reelmate/internal/library"
)

// ErrUnbound is returned by List and Save before a folder has been granted.
var ErrUnbound = errors.New("no status folder connected")

// ErrInvalidItem is returned by Save for names that are not plain files in the folder.
var ErrInvalidItem = errors.New("invalid status item")

// DefaultExtensions is the allow-list used when the config gives none.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "mp4"}

// Consent asks the user to grant a folder. suggested may be changed by the
// user; the returned dir is the one actually granted.
type Consent interface {
	Approve(ctx context.Context, suggested string) (dir string, ok bool, err error)
}

// Importer saves a file into the gallery album.
type Importer interface {
	Import(ctx context.Context, req importer.Request) (*library.Asset, error)
}

// Item is one status file.
type Item struct {
	ID        string // same as SourceURI
	Filename  string
	Type      library.MediaType
	SourceURI string
	SizeBytes int64
	ModTime   time.Time
}

// Config for the locator.
type Config struct {
	StorageRoot         string // empty means the host has no shared storage
	Extensions          []string
	ClearGrantOnFailure bool
	TempDir             string                 // empty uses os.TempDir
	OpenDir             func(dir string) fs.FS // nil uses os.DirFS
}

// Locator moves between unbound and bound states through Connect and
// Disconnect. The granted folder is kept in a grant.Store.
type Locator struct {
	root     string
	exts     map[string]bool
	clear    bool
	tempDir  string
	openDir  func(string) fs.FS
	grants   grant.Store
	consent  Consent
	importer Importer
	bus      events.Publisher // nil disables events
	log      *slog.Logger
	now      func() time.Time
}

// New creates a locator.
func New(cfg Config, grants grant.Store, consent Consent, imp Importer, bus events.Publisher, log *slog.Logger) *Locator {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	openDir := cfg.OpenDir
	if openDir == nil {
		openDir = os.DirFS
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Locator{
		root:     cfg.StorageRoot,
		exts:     allowed,
		clear:    cfg.ClearGrantOnFailure,
		tempDir:  tempDir,
		openDir:  openDir,
		grants:   grants,
		consent:  consent,
		importer: imp,
		bus:      bus,
		log:      log.With("component", "status"),
		now:      time.Now,
	}
}

// Suggest returns the first known status folder that exists under the
// storage root.
func (l *Locator) Suggest() (Variant, string, bool) {
	if l.root == "" {
		return Variant{}, "", false
	}
	for _, v := range Variants {
		dir := filepath.Join(l.root, filepath.FromSlash(v.Path))
		if IsStatusDir(dir) {
			return v, dir, true
		}
	}
	return Variant{}, "", false
}

// Connect asks for consent to read a status folder and stores the grant.
// A refusal leaves the locator unbound.
func (l *Locator) Connect(ctx context.Context) (string, error) {
	if l.root == "" {
		return "", apperr.New(apperr.KindUnsupportedPlatform, "status.connect", "this device has no shared storage")
	}

	_, suggested, found := l.Suggest()
	if !found {
		suggested = filepath.Join(l.root, filepath.FromSlash(Variants[0].Path))
	}

	dir, ok, err := l.consent.Approve(ctx, suggested)
	if err != nil {
		return "", fmt.Errorf("status consent: %w", err)
	}
	if !ok {
		l.log.Info("status access denied", "suggested", suggested)
		return "", apperr.New(apperr.KindPermissionDenied, "status.connect", "no access to the status folder")
	}
	if dir == "" {
		dir = suggested
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", apperr.Wrap(apperr.KindDirectoryAccessLost, "status.connect", err)
	}
	if !info.IsDir() {
		return "", apperr.Wrap(apperr.KindDirectoryAccessLost, "status.connect", fmt.Errorf("%s is not a directory", dir))
	}

	if err := l.grants.Set(ctx, dir); err != nil {
		return "", fmt.Errorf("store status grant: %w", err)
	}

	variant := variantFor(dir)
	l.publish(ctx, &events.StatusConnected{
		BaseEvent: events.NewBaseEvent(events.EventStatusConnected, events.EntityStatus, 0),
		Variant:   variant,
		Dir:       dir,
	})
	l.log.Info("status folder connected", "dir", dir, "variant", variant)
	return dir, nil
}

// Bound returns the granted folder, or ErrUnbound.
func (l *Locator) Bound(ctx context.Context) (string, error) {
	dir, err := l.grants.Get(ctx)
	if errors.Is(err, grant.ErrNoGrant) {
		return "", ErrUnbound
	}
	if err != nil {
		return "", fmt.Errorf("read status grant: %w", err)
	}
	return dir, nil
}

// List returns the allowed media files in the granted folder, sorted by
// name descending. Names embed a timestamp, so newest come first.
func (l *Locator) List(ctx context.Context) ([]Item, error) {
	dir, err := l.Bound(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(l.openDir(dir), ".")
	if err != nil {
		return nil, l.accessLost(ctx, dir, err)
	}

	var items []Item
	for _, e := range entries {
		if e.IsDir() || !l.allowed(e.Name()) {
			continue
		}
		item := Item{
			Filename:  e.Name(),
			Type:      classify(e.Name()),
			SourceURI: "file://" + filepath.Join(dir, e.Name()),
		}
		item.ID = item.SourceURI
		if info, err := e.Info(); err == nil {
			item.SizeBytes = info.Size()
			item.ModTime = info.ModTime()
		}
		items = append(items, item)
	}

	slices.SortFunc(items, func(a, b Item) int { return strings.Compare(b.Filename, a.Filename) })
	l.log.Debug("statuses listed", "dir", dir, "count", len(items))
	return items, nil
}

func (l *Locator) allowed(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	return ext != "" && l.exts[ext]
}

func classify(name string) library.MediaType {
	if importer.IsVideoFile(name) {
		return library.MediaVideo
	}
	return library.MediaImage
}

func (l *Locator) accessLost(ctx context.Context, dir string, cause error) error {
	cleared := false
	if l.clear {
		if err := l.grants.Clear(ctx); err != nil {
			l.log.Warn("clear status grant failed", "error", err)
		} else {
			cleared = true
		}
	}
	l.publish(ctx, &events.StatusAccessLost{
		BaseEvent:    events.NewBaseEvent(events.EventStatusAccessLost, events.EntityStatus, 0),
		Dir:          dir,
		Reason:       cause.Error(),
		GrantCleared: cleared,
	})
	l.log.Warn("status folder unreadable", "dir", dir, "grant_cleared", cleared, "error", cause)
	return apperr.Wrap(apperr.KindDirectoryAccessLost, "status.list", cause)
}

// Save copies item into the gallery album as WA_Status_<millis>.<ext>.
// The extension comes from the item name, or from the content when the
// name has none.
func (l *Locator) Save(ctx context.Context, item Item) (*library.Asset, error) {
	dir, err := l.Bound(ctx)
	if err != nil {
		return nil, err
	}
	name := item.Filename
	if !fs.ValidPath(name) || strings.Contains(name, "/") || name == "." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidItem, name)
	}

	src, err := l.openDir(dir).Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s no longer exists", ErrInvalidItem, name)
		}
		return nil, l.accessLost(ctx, dir, err)
	}
	defer func() { _ = src.Close() }()

	tmp, err := l.copyToTemp(ctx, src)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindImportFailure, "status.save", err)
	}
	defer func() {
		if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("remove status temp file failed", "path", tmp, "error", err)
		}
	}()

	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		mt, err := mimetype.DetectFile(tmp)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindImportFailure, "status.save", err)
		}
		ext = mt.Extension()
	}
	filename := "WA_Status_" + strconv.FormatInt(l.now().UnixMilli(), 10) + ext

	asset, err := l.importer.Import(ctx, importer.Request{
		SourcePath: tmp,
		Filename:   filename,
		Origin:     library.OriginStatus,
		Title:      name,
		SourceURL:  item.SourceURI,
	})
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, apperr.Wrap(apperr.KindPermissionDenied, "status.save", err)
		}
		return nil, apperr.Wrap(apperr.KindImportFailure, "status.save", err)
	}

	l.publish(ctx, &events.StatusSaved{
		BaseEvent: events.NewBaseEvent(events.EventStatusSaved, events.EntityAsset, asset.ID),
		SourceURI: item.SourceURI,
		Path:      asset.Path,
		MediaType: string(asset.MediaType),
	})
	l.log.Info("status saved", "source", item.SourceURI, "path", asset.Path)
	return asset, nil
}

// SaveAll saves every item, continuing past failures.
func (l *Locator) SaveAll(ctx context.Context, items []Item) ([]*library.Asset, error) {
	var saved []*library.Asset
	var errs []error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		a, err := l.Save(ctx, item)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item.Filename, err))
			continue
		}
		saved = append(saved, a)
	}
	return saved, errors.Join(errs...)
}

func (l *Locator) copyToTemp(ctx context.Context, src io.Reader) (string, error) {
	if err := os.MkdirAll(l.tempDir, 0755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(l.tempDir, "wa-status-*")
	if err != nil {
		return "", err
	}
	_, copyErr := io.Copy(f, ctxReader{ctx: ctx, r: src})
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Disconnect forgets the granted folder.
func (l *Locator) Disconnect(ctx context.Context) error {
	dir, err := l.Bound(ctx)
	if errors.Is(err, ErrUnbound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := l.grants.Clear(ctx); err != nil {
		return fmt.Errorf("clear status grant: %w", err)
	}
	l.publish(ctx, &events.StatusDisconnected{
		BaseEvent: events.NewBaseEvent(events.EventStatusDisconnected, events.EntityStatus, 0),
		Dir:       dir,
	})
	l.log.Info("status folder disconnected", "dir", dir)
	return nil
}

func (l *Locator) publish(ctx context.Context, e events.Event) {
	if l.bus == nil {
		return
	}
	if err := l.bus.Publish(ctx, e); err != nil {
		l.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
