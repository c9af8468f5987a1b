// Package handlers runs background workers that react to bus events.
package handlers

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Handler is a long-running event consumer.
type Handler interface {
	// Start blocks until ctx is done or the bus closes.
	Start(ctx context.Context) error
	Name() string
}

// Runner starts a set of handlers and waits for all of them.
type Runner struct {
	handlers []Handler
	logger   *slog.Logger
}

// NewRunner creates a runner for hs.
func NewRunner(logger *slog.Logger, hs ...Handler) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{handlers: hs, logger: logger}
}

// Run blocks until ctx is canceled or a handler fails.
// Cancellation is a clean stop and returns nil.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, h := range r.handlers {
		g.Go(func() error {
			r.logger.Debug("handler starting", "handler", h.Name())
			err := h.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("handler stopped", "handler", h.Name(), "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Background runs r until the returned stop func is called.
// stop cancels the handlers and waits for them to return.
func (r *Runner) Background(ctx context.Context) (stop func() error) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	return func() error {
		cancel()
		return <-done
	}
}
