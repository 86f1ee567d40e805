package engine

import (
	"context"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/domain"
)

// SearchEngine ranks the catalog against a query.
type SearchEngine interface {
	Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)
}
