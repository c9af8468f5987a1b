package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/vmunix/reelmate/internal/catalog"
	"github.com/vmunix/reelmate/internal/config"
	"github.com/vmunix/reelmate/internal/download"
	"github.com/vmunix/reelmate/internal/events"
	"github.com/vmunix/reelmate/internal/extractor"
	"github.com/vmunix/reelmate/internal/grant"
	"github.com/vmunix/reelmate/internal/handlers"
	"github.com/vmunix/reelmate/internal/importer"
	"github.com/vmunix/reelmate/internal/logging"
	"github.com/vmunix/reelmate/internal/migrations"
	"github.com/vmunix/reelmate/internal/permission"
	"github.com/vmunix/reelmate/internal/status"
)

// app is everything a command needs, wired from the config.
type app struct {
	cfg     *config.Config
	cfgPath string
	log     *slog.Logger

	db        *sql.DB
	eventLog  *events.EventLog
	bus       *events.Bus
	importer  *importer.Importer
	catalog   *catalog.Catalog
	extractor *extractor.Client
	prompter  permission.Prompter
	gate      *permission.Gate
	downloads *download.Manager
	janitor   *handlers.CacheJanitor

	closers []func() error
}

// openApp loads the config and opens the database. Call Close when done.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, path, err := config.Resolve(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	log, closeLog, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, cfgPath: path, log: log, closers: []func() error{closeLog}}

	if err := a.openDB(); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.eventLog = events.NewEventLog(a.db)
	a.bus = events.NewBus(a.eventLog, log.With("component", "events"))
	a.closers = append(a.closers, a.bus.Close)

	a.importer = importer.New(a.db, importer.Config{
		Root:  cfg.Library.Root,
		Album: cfg.Library.Album,
	}, a.bus, log.With("component", "importer"))

	a.catalog = catalog.New(a.db, catalog.Config{
		Album:      cfg.Library.Album,
		FetchLimit: cfg.Library.FetchLimit,
	}, a.importer, log.With("component", "catalog"))

	a.extractor = extractor.NewClient(
		extractor.WithEndpoint(cfg.Extractor.Endpoint),
		extractor.WithCacheTTL(cfg.Extractor.CacheTTL),
		extractor.WithBlockedHosts(cfg.Extractor.BlockedHosts),
		extractor.WithUserAgent(cfg.Download.UserAgent),
		extractor.WithHTTPClient(&http.Client{Timeout: cfg.Extractor.Timeout}),
		extractor.WithLogger(log.With("component", "extractor")),
	)

	a.prompter = newPrompter(cmd, opts.assumeYes || cfg.Permission.AutoGrant)

	var permStore grant.Store = grant.NewFileStore(cfg.Permission.GrantFile)
	if cfg.Permission.InMemory {
		permStore = grant.NewMemoryStore()
	}
	a.gate = permission.NewGate(
		permission.DirPlatform{Root: cfg.Library.Root},
		a.prompter,
		permStore,
		log.With("component", "permission"),
	)

	a.downloads = download.NewManager(a.gate, a.importer, a.bus, download.Config{
		CacheDir:  cfg.Download.CacheDir,
		KeepCache: cfg.Download.KeepCache,
		Timeout:   cfg.Download.Timeout,
		UserAgent: cfg.Download.UserAgent,
	}, log)

	staleAfter := cfg.Download.StaleAfter
	if cfg.Download.KeepCache {
		staleAfter = 0
	}
	a.janitor = handlers.NewCacheJanitor(a.bus, a.eventLog, handlers.JanitorConfig{
		CacheDir:       cfg.Download.CacheDir,
		StaleAfter:     staleAfter,
		EventRetention: cfg.Log.ActivityRetention,
	}, log.With("component", "janitor"))

	return a, nil
}

// startBackground runs the event handlers until the returned func is called.
func (a *app) startBackground(ctx context.Context) func() {
	stop := handlers.NewRunner(a.log, a.janitor).Background(ctx)
	return func() {
		if err := stop(); err != nil {
			a.log.Warn("background handlers", "error", err)
		}
	}
}

func (a *app) openDB() error {
	path := a.cfg.Library.Database
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	if err := migrations.Apply(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// statusLocator builds the status locator. dir, when set, is granted in
// place of the suggested folder.
func (a *app) statusLocator(dir string) *status.Locator {
	return status.New(status.Config{
		StorageRoot:         a.cfg.Status.StorageRoot,
		Extensions:          a.cfg.Status.Extensions,
		ClearGrantOnFailure: a.cfg.Status.ClearGrantOnFailure,
		TempDir:             filepath.Join(a.cfg.Download.CacheDir, "status"),
	},
		grant.NewFileStore(a.cfg.Status.GrantFile),
		status.PromptConsent{Prompter: a.prompter, Dir: dir},
		a.importer,
		a.bus,
		a.log,
	)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
