package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgcatalog "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/domain"
)

func newTestEngine() (*Engine, *catalog.Store) {
	store := catalog.NewStore()
	store.Replace([]pkgcatalog.Product{
		{ID: "1", Name: "Gold Ring", Category: "jewelries"},
		{ID: "2", Name: "Gold Necklace", Category: "jewelries"},
		{ID: "3", Name: "Cotton Shirt", Category: "clothings"},
	}, "test")
	return New(store), store
}

func hitIDs(r *domain.SearchResult) []string {
	out := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Product.ID
	}
	return out
}

func TestEngine_Search_Ranks(t *testing.T) {
	eng, _ := newTestEngine()

	result, err := eng.Search(context.Background(), &domain.SearchQuery{Query: "  Gold "})
	require.NoError(t, err)

	assert.Equal(t, "gold", result.Query)
	assert.Equal(t, []string{"1", "2", "3"}, hitIDs(result))
	assert.Equal(t, 3, result.Total)
	assert.False(t, result.Fallback)
	assert.Equal(t, uint64(1), result.CatalogVersion)
	assert.Equal(t, 134, result.Hits[0].Score)
}

func TestEngine_Search_CategoryOnly(t *testing.T) {
	eng, _ := newTestEngine()

	result, err := eng.Search(context.Background(), &domain.SearchQuery{Category: "clothings"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, hitIDs(result))
	assert.Zero(t, result.Hits[0].Score)
}

func TestEngine_Search_NoMatchIsFallback(t *testing.T) {
	eng, _ := newTestEngine()

	result, err := eng.Search(context.Background(), &domain.SearchQuery{Query: "xyz"})
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Empty(t, result.Hits)
	assert.NotNil(t, result.Hits)
}

func TestEngine_Search_SeesLatestSnapshot(t *testing.T) {
	eng, store := newTestEngine()
	store.Replace([]pkgcatalog.Product{{ID: "9", Name: "Hibiscus Tea", Category: "drinks"}}, "test")

	result, err := eng.Search(context.Background(), &domain.SearchQuery{Query: "tea"})
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, hitIDs(result))
	assert.Equal(t, uint64(2), result.CatalogVersion)
}

func TestEngine_Search_CanceledContext(t *testing.T) {
	eng, _ := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Search(ctx, &domain.SearchQuery{Query: "gold"})
	assert.ErrorIs(t, err, context.Canceled)
}
