package domain

import (
	pkgcatalog "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
)

// MaxQueryLength bounds the free-text query accepted from clients.
const MaxQueryLength = 200

// SearchQuery holds the parameters for one search.
type SearchQuery struct {
	Query    string `json:"query" validate:"max=200"`
	Category string `json:"category,omitempty" validate:"max=64"`
}

// Hit is one ranked product. Score is zero for passthrough and fallback
// results.
type Hit struct {
	Product pkgcatalog.Product `json:"product"`
	Score   int                `json:"score"`
}

// SearchResult is the ranked, unpaginated result of a search.
type SearchResult struct {
	Query          string `json:"query"`
	Category       string `json:"category,omitempty"`
	Hits           []Hit  `json:"hits"`
	Total          int    `json:"total"`
	Fallback       bool   `json:"fallback"`
	CatalogVersion uint64 `json:"catalog_version"`
	TookMs         int64  `json:"took_ms"`
}

// CategoryTile is a landing-page category with its thumbnail.
type CategoryTile struct {
	pkgcatalog.CategoryInfo
	Thumbnail    string `json:"thumbnail"`
	ProductCount int    `json:"product_count"`
}
