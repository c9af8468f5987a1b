package download

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/reelmate/internal/events"
	"github.com/vmunix/reelmate/internal/importer"
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

type fakeGate struct {
	granted bool
	err     error
	calls   int
}

func (g *fakeGate) Ensure(ctx context.Context) (bool, error) {
	g.calls++
	return g.granted, g.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type testEnv struct {
	db       *sql.DB
	gate     *fakeGate
	importer *importer.Importer
	bus      *recordingPublisher
	cacheDir string
	root     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	root := t.TempDir()
	return &testEnv{
		db:       db,
		gate:     &fakeGate{granted: true},
		importer: importer.New(db, importer.Config{Root: root, Album: "ReelMate"}, nil, testLogger()),
		bus:      &recordingPublisher{},
		cacheDir: t.TempDir(),
		root:     root,
	}
}

func (e *testEnv) manager(keepCache bool) *Manager {
	return NewManager(e.gate, e.importer, e.bus, Config{
		CacheDir:  e.cacheDir,
		KeepCache: keepCache,
		UserAgent: "reelmate-test",
	}, testLogger())
}
