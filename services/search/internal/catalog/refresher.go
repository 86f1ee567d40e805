package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RefresherConfig controls when the catalog is reloaded.
type RefresherConfig struct {
	// Interval between scheduled refreshes. Zero disables polling.
	Interval time.Duration
	// WatchPath, when set, triggers a refresh whenever that file changes.
	WatchPath string
	// ProbeConcurrency bounds gallery probes in flight.
	ProbeConcurrency int
}

// Refresher keeps a Store filled from a Provider. A failed refresh leaves
// the previous snapshot in service.
type Refresher struct {
	provider Provider
	store    *Store
	prober   Prober
	cfg      RefresherConfig
	logger   *slog.Logger
	trigger  chan struct{}
}

// NewRefresher creates a refresher. prober may be nil, in which case
// galleries are only padded, never expanded.
func NewRefresher(provider Provider, store *Store, prober Prober, cfg RefresherConfig, logger *slog.Logger) *Refresher {
	if cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = 8
	}
	return &Refresher{
		provider: provider,
		store:    store,
		prober:   prober,
		cfg:      cfg,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Refresh fetches one snapshot and installs it.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	defer func() { refreshDuration.Observe(time.Since(start).Seconds()) }()

	products, err := r.provider.FetchSnapshot(ctx)
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		r.logger.WarnContext(ctx, "catalog refresh failed, keeping previous snapshot",
			slog.String("source", r.provider.Source()),
			slog.Uint64("version", r.store.Snapshot().Version),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("refresh catalog: %w", err)
	}

	products = ExpandGalleries(ctx, products, r.prober, r.cfg.ProbeConcurrency)
	snap := r.store.Replace(products, r.provider.Source())

	refreshTotal.WithLabelValues("success").Inc()
	catalogProducts.Set(float64(len(snap.Products)))
	catalogVersion.Set(float64(snap.Version))

	r.logger.DebugContext(ctx, "catalog refreshed",
		slog.String("source", snap.Source),
		slog.Uint64("version", snap.Version),
		slog.Int("products", len(snap.Products)),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

// Trigger requests a refresh without waiting for it. Requests made while
// one is already pending are coalesced.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes once, then on every tick, trigger and watched file change
// until ctx is canceled. Refresh errors are logged, not returned.
func (r *Refresher) Run(ctx context.Context) error {
	_ = r.Refresh(ctx)

	var tick <-chan time.Time
	if r.cfg.Interval > 0 {
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var (
		fsEvents <-chan fsnotify.Event
		fsErrors <-chan error
	)
	if r.cfg.WatchPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create catalog watcher: %w", err)
		}
		defer watcher.Close()

		// Watch the directory: atomic saves replace the file via rename.
		if err := watcher.Add(filepath.Dir(r.cfg.WatchPath)); err != nil {
			return fmt.Errorf("watch %s: %w", r.cfg.WatchPath, err)
		}
		fsEvents, fsErrors = watcher.Events, watcher.Errors
	}

	target := filepath.Clean(r.cfg.WatchPath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			_ = r.Refresh(ctx)
		case <-r.trigger:
			_ = r.Refresh(ctx)
		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if filepath.Clean(ev.Name) == target && ev.Has(fsnotify.Write|fsnotify.Create) {
				r.logger.DebugContext(ctx, "catalog file changed", slog.String("op", ev.Op.String()))
				_ = r.Refresh(ctx)
			}
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			r.logger.WarnContext(ctx, "catalog watcher error", slog.String("error", err.Error()))
		}
	}
}
