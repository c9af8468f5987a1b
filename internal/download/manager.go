package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/reelmate/internal/apperr"
	"github.com/vmunix/reelmate/internal/catalog"
	"github.com/vmunix/reelmate/internal/events"
	"github.com/vmunix/reelmate/internal/extractor"
	"github.com/vmunix/reelmate/internal/importer"
	"github.com/vmunix/reelmate/internal/library"
)

// Gate grants write access to the gallery.
type Gate interface {
	Ensure(ctx context.Context) (bool, error)
}

// Importer moves a finished file into the album.
type Importer interface {
	Import(ctx context.Context, req importer.Request) (*library.Asset, error)
}

// Config for the manager.
type Config struct {
	CacheDir   string
	KeepCache  bool          // leave <uuid>.part files after import
	Timeout    time.Duration // whole-transfer limit; zero means none
	UserAgent  string
	HTTPClient *http.Client // nil uses a client with Timeout
}

// Manager streams media into the cache and hands it to the importer.
// Concurrent downloads of the same URL are independent.
type Manager struct {
	gate       Gate
	importer   Importer
	bus        events.Publisher // nil disables events
	httpClient *http.Client
	cacheDir   string
	keepCache  bool
	userAgent  string
	log        *slog.Logger

	mu   sync.Mutex
	jobs map[string]*Job
}

// NewManager creates a new download manager.
func NewManager(gate Gate, imp Importer, bus events.Publisher, cfg Config, log *slog.Logger) *Manager {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Manager{
		gate:       gate,
		importer:   imp,
		bus:        bus,
		httpClient: hc,
		cacheDir:   cfg.CacheDir,
		keepCache:  cfg.KeepCache,
		userAgent:  cfg.UserAgent,
		log:        log.With("component", "download"),
		jobs:       make(map[string]*Job),
	}
}

// Download fetches req.URL and imports it into the album as
// "<title>_<quality>.mp4". progress may be nil.
func (m *Manager) Download(ctx context.Context, req Request, progress ProgressFunc) (*catalog.Record, error) {
	if req.URL == "" {
		return nil, apperr.Wrap(apperr.KindNetworkFailure, "download", ErrNoURL)
	}
	if req.Quality == "" {
		req.Quality = extractor.QualityBest
	}

	if err := m.ensurePermission(ctx); err != nil {
		m.publishFailed(ctx, req, err)
		return nil, err
	}

	job := m.track(req)
	defer m.untrack(job.ID)

	rec, err := m.run(ctx, job, progress)
	if err != nil {
		_ = m.transition(job, StatusFailed, err)
		m.log.Error("download failed", "job", job.ID, "url", req.URL, "kind", apperr.KindOf(err), "error", err)
		m.publishFailed(ctx, req, err)
		return nil, err
	}
	return rec, nil
}

func (m *Manager) ensurePermission(ctx context.Context) error {
	granted, err := m.gate.Ensure(ctx)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUnknown {
			return err
		}
		return apperr.Wrap(apperr.KindPermissionDenied, "download", err)
	}
	if !granted {
		return apperr.New(apperr.KindPermissionDenied, "download", "gallery access was not granted")
	}
	return nil
}

func (m *Manager) run(ctx context.Context, job *Job, progress ProgressFunc) (*catalog.Record, error) {
	req := job.Request
	if err := m.transition(job, StatusDownloading, nil); err != nil {
		return nil, err
	}
	m.publish(ctx, &events.DownloadStarted{
		BaseEvent: events.NewBaseEvent(events.EventDownloadStarted, events.EntityDownload, 0),
		SourceURL: req.SourceURL,
		MediaURL:  req.URL,
		Title:     req.Title,
		Quality:   string(req.Quality),
	})
	m.log.Info("download started", "job", job.ID, "url", req.URL, "quality", req.Quality)

	cachePath, err := m.fetch(ctx, job, progress)
	if cachePath != "" && !m.keepCache {
		defer func() {
			if err := os.Remove(cachePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				m.log.Warn("remove cache file failed", "path", cachePath, "error", err)
			}
		}()
	}
	if err != nil {
		return nil, err
	}

	if err := m.transition(job, StatusImporting, nil); err != nil {
		return nil, err
	}
	asset, err := m.importer.Import(ctx, importer.Request{
		SourcePath: cachePath,
		Filename:   importer.DownloadFilename(req.Title, string(req.Quality)),
		Origin:     library.OriginDownload,
		Title:      req.Title,
		SourceURL:  req.SourceURL,
		Quality:    string(req.Quality),
		Platform:   string(req.Platform),
	})
	if err != nil {
		return nil, classifyImportError(err)
	}

	if err := m.transition(job, StatusCompleted, nil); err != nil {
		return nil, err
	}
	m.publish(ctx, &events.DownloadCompleted{
		BaseEvent: events.NewBaseEvent(events.EventDownloadCompleted, events.EntityAsset, asset.ID),
		SourceURL: req.SourceURL,
		Title:     req.Title,
		Quality:   string(req.Quality),
		Path:      asset.Path,
		SizeBytes: asset.SizeBytes,
	})
	m.log.Info("download complete", "job", job.ID, "asset_id", asset.ID, "path", asset.Path, "size_bytes", asset.SizeBytes)

	rec := catalog.FromAsset(asset)
	return &rec, nil
}

// fetch streams the media to <cache_dir>/<job id>.part and returns that path.
// A non-empty path is returned whenever the file was created.
func (m *Manager) fetch(ctx context.Context, job *Job, progress ProgressFunc) (string, error) {
	if err := os.MkdirAll(m.cacheDir, 0755); err != nil {
		return "", classifyFSError("create cache dir", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, job.Request.URL, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindNetworkFailure, "download", err)
	}
	if m.userAgent != "" {
		httpReq.Header.Set("User-Agent", m.userAgent)
	}

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", interrupted(ctx)
		}
		return "", apperr.Wrap(apperr.KindNetworkFailure, "download", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.Wrap(apperr.KindNetworkFailure, "download", fmt.Errorf("%w: %s", ErrBadStatus, resp.Status))
	}

	path := filepath.Join(m.cacheDir, job.ID+".part")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", classifyFSError("create cache file", err)
	}
	m.update(job, func(j *Job) {
		j.CachePath = path
		j.Expected = resp.ContentLength
	})

	pw := &progressWriter{
		w:        f,
		expected: resp.ContentLength,
		fn:       progress,
		onWrite:  func(n int64) { m.update(job, func(j *Job) { j.Written = n }) },
	}
	_, copyErr := io.Copy(pw, resp.Body)
	closeErr := f.Close()

	if copyErr != nil {
		var we *writeError
		switch {
		case errors.As(copyErr, &we):
			return path, classifyFSError("write cache file", we.err)
		case ctx.Err() != nil:
			return path, interrupted(ctx)
		default:
			return path, apperr.Wrap(apperr.KindNetworkFailure, "download", copyErr)
		}
	}
	if closeErr != nil {
		return path, classifyFSError("close cache file", closeErr)
	}
	if resp.ContentLength > 0 && pw.written < resp.ContentLength {
		return path, apperr.Wrap(apperr.KindNetworkFailure, "download",
			fmt.Errorf("short body: got %d of %d bytes", pw.written, resp.ContentLength))
	}

	pw.finish()
	return path, nil
}

// interrupted reports a canceled or expired download as a retryable network
// failure that still matches context.Canceled or context.DeadlineExceeded.
func interrupted(ctx context.Context) error {
	return apperr.Wrap(apperr.KindNetworkFailure, "download", fmt.Errorf("interrupted: %w", ctx.Err()))
}

func classifyFSError(op string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return apperr.Wrap(apperr.KindPermissionDenied, "download", fmt.Errorf("%s: %w", op, err))
	}
	return apperr.Wrap(apperr.KindImportFailure, "download", fmt.Errorf("%s: %w", op, err))
}

func classifyImportError(err error) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		return err
	}
	return classifyFSError("import", err)
}

// Active returns the jobs currently in flight, oldest first.
func (m *Manager) Active() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		jobs = append(jobs, *j)
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].StartedAt.Before(jobs[b].StartedAt) })
	return jobs
}

func (m *Manager) track(req Request) *Job {
	job := &Job{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    StatusQueued,
		Expected:  -1,
		StartedAt: time.Now(),
	}
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return job
}

func (m *Manager) untrack(id string) {
	m.mu.Lock()
	delete(m.jobs, id)
	m.mu.Unlock()
}

func (m *Manager) update(job *Job, fn func(*Job)) {
	m.mu.Lock()
	fn(job)
	m.mu.Unlock()
}

func (m *Manager) transition(job *Job, to Status, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !job.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, to)
	}
	m.log.Debug("job status changed", "job", job.ID, "status", to, "prev", job.Status)
	job.Status = to
	job.Err = cause
	return nil
}

func (m *Manager) publish(ctx context.Context, e events.Event) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, e); err != nil {
		m.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}

// publishFailed outlives ctx so a canceled download is still recorded.
func (m *Manager) publishFailed(ctx context.Context, req Request, err error) {
	m.publish(context.WithoutCancel(ctx), &events.DownloadFailed{
		BaseEvent: events.NewBaseEvent(events.EventDownloadFailed, events.EntityDownload, 0),
		SourceURL: req.SourceURL,
		Title:     req.Title,
		Kind:      string(apperr.KindOf(err)),
		Reason:    err.Error(),
		Retryable: apperr.IsRetryable(err),
	})
}
