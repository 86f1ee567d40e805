package memory

import (
	"context"
	"time"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/domain"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/ranking"
)

// Engine ranks the snapshot currently held by a catalog store. Each search
// reads exactly one snapshot, so a concurrent refresh never shows through
// half way.
type Engine struct {
	store *catalog.Store
}

// New creates an engine reading from store.
func New(store *catalog.Store) *Engine {
	return &Engine{store: store}
}

// Search implements engine.SearchEngine.
func (e *Engine) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	snap := e.store.Snapshot()
	scored, fallback := ranking.RankScored(snap.Products, query.Query, query.Category)

	hits := make([]domain.Hit, len(scored))
	for i, s := range scored {
		hits[i] = domain.Hit{Product: s.Product, Score: s.Score}
	}

	return &domain.SearchResult{
		Query:          ranking.Normalize(query.Query),
		Category:       query.Category,
		Hits:           hits,
		Total:          len(hits),
		Fallback:       fallback,
		CatalogVersion: snap.Version,
		TookMs:         time.Since(start).Milliseconds(),
	}, nil
}
