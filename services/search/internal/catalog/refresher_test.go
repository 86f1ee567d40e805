package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	pkgcatalog "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubProvider struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (p *stubProvider) Source() string { return "stub" }

func (p *stubProvider) FetchSnapshot(context.Context) ([]pkgcatalog.Product, error) {
	n := p.calls.Add(1)
	if p.fail.Load() {
		return nil, errors.New("upstream down")
	}
	products := make([]pkgcatalog.Product, n)
	for i := range products {
		products[i] = pkgcatalog.Product{ID: string(rune('a' + i)), Name: "p"}
	}
	return products, nil
}

func TestRefresher_RefreshInstallsSnapshot(t *testing.T) {
	store := NewStore()
	r := NewRefresher(&stubProvider{}, store, nil, RefresherConfig{}, discardLogger())

	require.NoError(t, r.Refresh(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, "stub", snap.Source)
	require.Len(t, snap.Products, 1)
	assert.Len(t, snap.Products[0].Images, MinGallerySize, "galleries are padded on install")
}

func TestRefresher_FailureKeepsPreviousSnapshot(t *testing.T) {
	store := NewStore()
	provider := &stubProvider{}
	r := NewRefresher(provider, store, nil, RefresherConfig{}, discardLogger())

	require.NoError(t, r.Refresh(context.Background()))
	provider.fail.Store(true)

	err := r.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
	assert.Equal(t, uint64(1), store.Snapshot().Version)
	assert.Len(t, store.Snapshot().Products, 1)
}

func TestRefresher_RunPollsAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewStore()
	provider := &stubProvider{}
	r := NewRefresher(provider, store, nil, RefresherConfig{Interval: 10 * time.Millisecond}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return store.Snapshot().Version >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRefresher_TriggerRefreshesOnDemand(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewStore()
	r := NewRefresher(&stubProvider{}, store, nil, RefresherConfig{}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return store.Snapshot().Version == 1 }, time.Second, 5*time.Millisecond)

	r.Trigger()
	require.Eventually(t, func() bool { return store.Snapshot().Version == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRefresher_TriggerCoalesces(t *testing.T) {
	r := NewRefresher(&stubProvider{}, NewStore(), nil, RefresherConfig{}, discardLogger())

	r.Trigger()
	r.Trigger()
	r.Trigger()

	assert.Len(t, r.trigger, 1)
}

func TestRefresher_WatchesCatalogFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := writeCatalog(t, dir, sampleJSON)

	store := NewStore()
	r := NewRefresher(NewFileProvider(path), store, nil, RefresherConfig{WatchPath: path}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return len(store.Snapshot().Products) == 2 }, 2*time.Second, 10*time.Millisecond)

	// Replace the file the way catalog.Save does: temp file then rename.
	updated := []pkgcatalog.Product{{ID: "9", Name: "Silk Scarf", Category: "clothings"}}
	require.NoError(t, pkgcatalog.Save(path, updated))

	require.Eventually(t, func() bool {
		p, ok := store.Find("9")
		return ok && p.Name == "Silk Scarf"
	}, 5*time.Second, 10*time.Millisecond)

	// Unrelated files in the directory are ignored.
	before := store.Snapshot().Version
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, store.Snapshot().Version)

	cancel()
	require.NoError(t, <-done)
}

func TestRefresher_WatchMissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "missing", "products.json")
	r := NewRefresher(NewFileProvider(path), NewStore(), nil, RefresherConfig{WatchPath: path}, discardLogger())

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch")
}
