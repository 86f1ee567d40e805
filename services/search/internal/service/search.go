package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pkgcatalog "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	apperrors "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/errors"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/validator"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/domain"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/engine"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/ranking"
)

// Trigger requests an asynchronous catalog refresh.
type Trigger interface {
	Trigger()
}

// SearchService implements the business logic for search and catalog reads.
type SearchService struct {
	engine  engine.SearchEngine
	store   *catalog.Store
	refresh Trigger
	logger  *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(eng engine.SearchEngine, store *catalog.Store, refresh Trigger, logger *slog.Logger) *SearchService {
	return &SearchService{
		engine:  eng,
		store:   store,
		refresh: refresh,
		logger:  logger,
	}
}

// Search ranks the current catalog against query.
func (s *SearchService) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	if err := validator.Validate(query); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.engine.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	searchDuration.Observe(time.Since(start).Seconds())
	searchResults.Observe(float64(result.Total))
	searchTotal.WithLabelValues(outcome(result)).Inc()

	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", result.Query),
		slog.String("category", result.Category),
		slog.Int("total", result.Total),
		slog.Bool("fallback", result.Fallback),
		slog.Uint64("catalog_version", result.CatalogVersion),
	)

	return result, nil
}

func outcome(r *domain.SearchResult) string {
	switch {
	case r.Query == "":
		return "passthrough"
	case r.Fallback && r.Total == 0:
		return "empty"
	case r.Fallback:
		return "fallback"
	default:
		return "ranked"
	}
}

// ListProducts returns the current snapshot, optionally narrowed to one
// category, with the version of the snapshot it came from.
func (s *SearchService) ListProducts(ctx context.Context, category string) ([]pkgcatalog.Product, uint64, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, 0, err
	}
	return ranking.FilterCategory(snap.Products, category), snap.Version, nil
}

// GetProduct returns one product by id.
func (s *SearchService) GetProduct(ctx context.Context, id string) (*pkgcatalog.Product, uint64, error) {
	if id == "" {
		return nil, 0, apperrors.InvalidInput("product id is required")
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, 0, err
	}
	p, ok := snap.Find(id)
	if !ok {
		return nil, 0, apperrors.NotFound("product", id)
	}
	return &p, snap.Version, nil
}

// Featured returns featured products in catalog order.
func (s *SearchService) Featured(ctx context.Context) ([]pkgcatalog.Product, uint64, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, 0, err
	}
	out := make([]pkgcatalog.Product, 0)
	for _, p := range snap.Products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, snap.Version, nil
}

// Categories returns the landing-page tiles. Each thumbnail is the first
// image of the first product in that category that has one.
func (s *SearchService) Categories(ctx context.Context) ([]domain.CategoryTile, uint64, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, 0, err
	}

	infos := pkgcatalog.Categories()
	tiles := make([]domain.CategoryTile, 0, len(infos))
	for _, info := range infos {
		tile := domain.CategoryTile{CategoryInfo: info, Thumbnail: pkgcatalog.DefaultThumbnail}
		found := false
		for _, p := range snap.Products {
			if p.Category != info.Key {
				continue
			}
			tile.ProductCount++
			if img := firstRealImage(p); !found && img != "" {
				tile.Thumbnail = img
				found = true
			}
		}
		tiles = append(tiles, tile)
	}
	return tiles, snap.Version, nil
}

func firstRealImage(p pkgcatalog.Product) string {
	for _, img := range p.Images {
		if img != pkgcatalog.PlaceholderImage {
			return img
		}
	}
	if p.Image != "" {
		return p.Image
	}
	return ""
}

// Refresh asks the refresher to reload the catalog and returns immediately.
func (s *SearchService) Refresh(ctx context.Context) {
	s.refresh.Trigger()
	s.logger.InfoContext(ctx, "catalog refresh requested")
}

// CatalogInfo describes the snapshot in service.
func (s *SearchService) CatalogInfo() (version uint64, loadedAt time.Time, source string) {
	snap := s.store.Snapshot()
	return snap.Version, snap.LoadedAt, snap.Source
}

func (s *SearchService) ready() error {
	if !s.store.Ready() {
		return apperrors.ServiceUnavailable("catalog not loaded yet")
	}
	return nil
}

// snapshot reads the current snapshot once so a response and its version
// header describe the same catalog.
func (s *SearchService) snapshot() (*catalog.Snapshot, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.Snapshot(), nil
}
