// Package ranking scores and orders catalog products against a free-text
// query. Everything here is a pure function of its arguments.
package ranking

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
)

// Score weights.
const (
	PhraseBonus  = 100
	NameTokenHit = 12
	IDTokenHit   = 8
	FuzzyWeight  = 50
)

var denylist = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")

// Normalize strips the characters <>"'& from q, lower-cases it and trims
// surrounding white space. Normalize(Normalize(q)) == Normalize(q).
func Normalize(q string) string {
	return strings.TrimSpace(strings.ToLower(denylist.Replace(q)))
}

// Scored pairs a product with its relevance score.
type Scored struct {
	Product catalog.Product `json:"product"`
	Score   int             `json:"score"`
}

// Rank filters products by category and orders them by relevance to query.
// The returned slice is a subsequence of products.
func Rank(products []catalog.Product, query, category string) []catalog.Product {
	scored, _ := RankScored(products, query, category)
	out := make([]catalog.Product, len(scored))
	for i, s := range scored {
		out[i] = s.Product
	}
	return out
}

// RankScored is Rank with scores attached. The boolean reports whether the
// plain substring fallback produced the result; fallback entries carry a
// zero score. An empty normalized query returns the filtered set with zero
// scores and fallback false.
func RankScored(products []catalog.Product, query, category string) ([]Scored, bool) {
	candidates := FilterCategory(products, category)

	q := Normalize(query)
	if q == "" {
		out := make([]Scored, len(candidates))
		for i, p := range candidates {
			out[i] = Scored{Product: p}
		}
		return out, false
	}

	ranked := make([]Scored, 0, len(candidates))
	for _, p := range candidates {
		if s := Score(p, q); s > 0 {
			ranked = append(ranked, Scored{Product: p, Score: s})
		}
	}
	if len(ranked) > 0 {
		slices.SortStableFunc(ranked, func(a, b Scored) int {
			return b.Score - a.Score
		})
		return ranked, false
	}

	fallback := make([]Scored, 0)
	for _, p := range candidates {
		if containsQuery(strings.ToLower(p.Name), q) || containsQuery(strings.ToLower(p.ID), q) {
			fallback = append(fallback, Scored{Product: p})
		}
	}
	return fallback, true
}

// FilterCategory keeps products whose Category equals category exactly. An
// empty category keeps everything.
func FilterCategory(products []catalog.Product, category string) []catalog.Product {
	if category == "" {
		return products
	}
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Score computes the relevance of p for an already normalized query q.
func Score(p catalog.Product, q string) int {
	if q == "" {
		return 0
	}
	name := strings.ToLower(p.Name)
	id := strings.ToLower(p.ID)

	score := 0
	if containsQuery(name, q) || containsQuery(id, q) {
		score += PhraseBonus
	}

	for _, t := range strings.Fields(q) {
		if containsQuery(name, t) {
			score += NameTokenHit
		}
		if containsQuery(id, t) {
			score += IDTokenHit
		}
	}

	maxLen := max(utf8.RuneCountInString(q), utf8.RuneCountInString(name), 1)
	sim := 1 - float64(Levenshtein(q, name))/float64(maxLen)
	if sim > 0 {
		score += int(math.Floor(sim*FuzzyWeight + 0.5))
	}
	return score
}

// containsQuery is strings.Contains except that an empty field never
// matches.
func containsQuery(field, q string) bool {
	return field != "" && strings.Contains(field, q)
}

// Levenshtein returns the unit-cost edit distance between a and b, counted
// in runes. It does no case folding.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
