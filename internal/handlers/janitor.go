package handlers

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmunix/reelmate/internal/events"
)

// partSuffix marks an in-flight download in the cache directory.
const partSuffix = ".part"

// ErrPathOutsideRoot is returned when a sweep target escapes the cache dir.
var ErrPathOutsideRoot = errors.New("path outside cache dir")

// JanitorConfig configures the cache janitor.
type JanitorConfig struct {
	CacheDir string
	// StaleAfter is how old a .part file must be before it is removed.
	// Zero disables the cache sweep.
	StaleAfter time.Duration
	// EventRetention prunes the activity log. Zero keeps everything.
	EventRetention time.Duration
}

// SweepResult reports one sweep.
type SweepResult struct {
	RemovedFiles int   `json:"removed_files"`
	RemovedBytes int64 `json:"removed_bytes"`
	PrunedEvents int64 `json:"pruned_events"`
}

// CacheJanitor removes abandoned partial downloads and prunes old events.
// It sweeps once on start and again whenever a download ends.
type CacheJanitor struct {
	bus      *events.Bus
	logger   *slog.Logger
	config   JanitorConfig
	eventLog *events.EventLog
	now      func() time.Time
}

// NewCacheJanitor creates a janitor. eventLog may be nil.
func NewCacheJanitor(bus *events.Bus, eventLog *events.EventLog, cfg JanitorConfig, logger *slog.Logger) *CacheJanitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheJanitor{
		bus:      bus,
		logger:   logger,
		config:   cfg,
		eventLog: eventLog,
		now:      time.Now,
	}
}

// Name returns the handler name.
func (j *CacheJanitor) Name() string {
	return "cache-janitor"
}

// Start sweeps, then waits for download outcomes.
func (j *CacheJanitor) Start(ctx context.Context) error {
	completed := j.bus.Subscribe(events.EventDownloadCompleted, 16)
	failed := j.bus.Subscribe(events.EventDownloadFailed, 16)
	defer j.bus.Unsubscribe(completed)
	defer j.bus.Unsubscribe(failed)

	j.run()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-completed:
			if !ok {
				return nil
			}
			j.run()
		case _, ok := <-failed:
			if !ok {
				return nil
			}
			j.run()
		}
	}
}

func (j *CacheJanitor) run() {
	res, err := j.Sweep()
	if err != nil {
		j.logger.Warn("cache sweep failed", "cache_dir", j.config.CacheDir, "error", err)
	}
	if res.RemovedFiles > 0 || res.PrunedEvents > 0 {
		j.logger.Info("cache sweep",
			"removed_files", res.RemovedFiles,
			"removed_bytes", res.RemovedBytes,
			"pruned_events", res.PrunedEvents)
	}
}

// Sweep removes stale .part files and prunes expired events.
// A missing cache directory is not an error.
func (j *CacheJanitor) Sweep() (SweepResult, error) {
	var res SweepResult
	var errs []error

	if j.config.StaleAfter > 0 && j.config.CacheDir != "" {
		if err := j.sweepCache(&res); err != nil {
			errs = append(errs, err)
		}
	}

	if j.config.EventRetention > 0 && j.eventLog != nil {
		n, err := j.eventLog.Prune(j.config.EventRetention)
		if err != nil {
			errs = append(errs, err)
		}
		res.PrunedEvents = n
	}

	return res, errors.Join(errs...)
}

func (j *CacheJanitor) sweepCache(res *SweepResult) error {
	entries, err := os.ReadDir(j.config.CacheDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	cutoff := j.now().Add(-j.config.StaleAfter)
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), partSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // raced with the download that owns it
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := j.remove(filepath.Join(j.config.CacheDir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		res.RemovedFiles++
		res.RemovedBytes += info.Size()
	}
	return errors.Join(errs...)
}

// remove deletes path only if it lies directly under the cache dir.
func (j *CacheJanitor) remove(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	absRoot, err := filepath.Abs(j.config.CacheDir)
	if err != nil {
		return err
	}
	if filepath.Dir(filepath.Clean(absPath)) != filepath.Clean(absRoot) {
		j.logger.Warn("refusing to delete path outside cache dir",
			"path", path,
			"cache_dir", j.config.CacheDir)
		return ErrPathOutsideRoot
	}

	err = os.Remove(absPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
