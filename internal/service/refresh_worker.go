package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/dafibh/paydesk/paydesk-client/internal/form"
	"github.com/rs/zerolog"
)

// RefreshWorker is a background worker that periodically refetches outstanding bills
// for the logged-in user
type RefreshWorker struct {
	formService *FormService
	logger      zerolog.Logger
	interval    time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	mu          sync.Mutex
	running     bool
}

// DefaultRefreshInterval is used when a non-positive interval is given
const DefaultRefreshInterval = 5 * time.Minute

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(formService *FormService, logger zerolog.Logger, interval time.Duration) *RefreshWorker {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	return &RefreshWorker{
		formService: formService,
		logger:      logger.With().Str("component", "refresh_worker").Logger(),
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background refresh
func (w *RefreshWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("Starting refresh worker")

	go w.run(ctx)
}

// Stop gracefully stops the refresh worker
func (w *RefreshWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping refresh worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Refresh worker stopped")
}

func (w *RefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

// refresh refetches outstanding bills if someone is logged in
func (w *RefreshWorker) refresh(ctx context.Context) {
	user, ok := w.formService.CurrentUser()
	if !ok {
		return
	}

	start := time.Now()
	state, err := w.formService.Dispatch(ctx, form.RefreshOutstanding{})
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		// Logged out between the check and the dispatch
		return
	case err != nil:
		w.logger.Warn().Err(err).Str("user", user).Msg("Periodic refresh failed, keeping cached bills")
		return
	}

	w.logger.Debug().
		Str("user", user).
		Int("parties", len(state.Session.Outstanding)).
		Dur("elapsed", time.Since(start)).
		Msg("Refreshed outstanding bills")
}

// IsRunning returns whether the worker is currently running
func (w *RefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
