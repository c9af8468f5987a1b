// Package permission guards writes to the media gallery behind a cached,
// user-confirmed grant.
package permission

//go:generate mockgen -destination=mocks/permission.go -package=mocks . Platform,Prompter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vmunix/reelmate/internal/apperr"
	"github.com/vmunix/reelmate/internal/grant"
)

// grantedValue is what the gate stores once the user has allowed access.
const grantedValue = "granted"

// Platform reports and prepares media-library access on the host.
type Platform interface {
	// Supported reports whether the host has a media gallery at all.
	Supported() bool
	// Check reports whether access is already available without asking.
	Check(ctx context.Context) (bool, error)
	// Prepare makes the gallery writable once the user has agreed.
	Prepare(ctx context.Context) error
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Gate requests media-library access at most once per grant.
type Gate struct {
	platform Platform
	prompter Prompter
	store    grant.Store
	log      *slog.Logger

	mu      sync.Mutex
	granted bool
}

// NewGate creates a gate. store caches the grant across runs; use a
// grant.MemoryStore to keep it process-local.
func NewGate(platform Platform, prompter Prompter, store grant.Store, log *slog.Logger) *Gate {
	return &Gate{
		platform: platform,
		prompter: prompter,
		store:    store,
		log:      log,
	}
}

// Ensure returns true when writing to the gallery is allowed. The prompter is
// consulted only when no grant is cached and the platform does not already
// allow access. A denial is returned as a PermissionDenied error.
func (g *Gate) Ensure(ctx context.Context) (bool, error) {
	const op = "permission.ensure"

	if !g.platform.Supported() {
		return false, apperr.New(apperr.KindUnsupportedPlatform, op, "media gallery is not available on this platform")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.granted {
		return true, nil
	}

	if value, err := g.store.Get(ctx); err == nil && value == grantedValue {
		g.granted = true
		return true, nil
	} else if err != nil && !errors.Is(err, grant.ErrNoGrant) {
		g.log.Warn("reading cached permission failed", "error", err)
	}

	ok, err := g.platform.Check(ctx)
	if err != nil {
		return false, apperr.Wrap(apperr.KindPermissionDenied, op, fmt.Errorf("check access: %w", err))
	}

	if !ok {
		g.log.Debug("requesting media library access")
		ok, err = g.prompter.Confirm(ctx, "Allow reelmate to save media to your gallery?")
		if err != nil {
			return false, apperr.Wrap(apperr.KindPermissionDenied, op, fmt.Errorf("prompt: %w", err))
		}
		if !ok {
			g.log.Info("media library access denied")
			return false, apperr.New(apperr.KindPermissionDenied, op, "media library access was denied")
		}
	}

	if err := g.platform.Prepare(ctx); err != nil {
		return false, apperr.Wrap(apperr.KindPermissionDenied, op, fmt.Errorf("prepare gallery: %w", err))
	}

	g.granted = true
	if err := g.store.Set(ctx, grantedValue); err != nil {
		g.log.Warn("caching permission failed", "error", err)
	}
	g.log.Debug("media library access granted")
	return true, nil
}

// Revoke forgets the cached grant.
func (g *Gate) Revoke(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.granted = false
	return g.store.Clear(ctx)
}
