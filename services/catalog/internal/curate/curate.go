// Package curate tidies the image galleries of an existing catalog.
package curate

import (
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/slug"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/images"
)

// Base derives the file name stem a product's images share: the hero
// image's base name, else the second segment of the slug ("j-jewelry-3"
// gives "jewelry"), else the slug itself.
func Base(p catalog.Product) string {
	if p.Image != "" {
		b := path.Base(p.Image)
		return strings.TrimSuffix(b, path.Ext(b))
	}
	if p.Slug == "" {
		return ""
	}
	if seg := slug.Segment(p.Slug, 1); seg != "" {
		return seg
	}
	return p.Slug
}

// Matching returns the image files belonging to base: the base file itself
// or base followed by "_" or "-". Plain names sort first, then natural order.
func Matching(base string, files []string) []string {
	if base == "" {
		return nil
	}
	re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(base) + `(?:$|[_-].*)`)

	var out []string
	for _, f := range files {
		if !images.IsImage(f) {
			continue
		}
		if re.MatchString(strings.TrimSuffix(f, path.Ext(f))) {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, compareFiles)
	return out
}

func compareFiles(a, b string) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	return NaturalCompare(a, b)
}

func rank(name string) int {
	if strings.ContainsAny(name, "_-") {
		return 1
	}
	return 0
}

// Attach points every product at the image files matching its Base. urlFor
// maps a file name to the reference stored in the catalog. It returns the
// number of products changed.
func Attach(products []catalog.Product, files []string, urlFor func(string) string) int {
	changed := 0
	for i := range products {
		p := &products[i]
		matched := Matching(Base(*p), files)

		existing := p.Images
		if len(existing) == 0 && p.Image != "" {
			existing = []string{p.Image}
		}

		if len(matched) == 0 {
			if len(p.Images) == 0 && p.Image != "" {
				p.Images = []string{p.Image}
				changed++
			}
			continue
		}

		refs := make([]string, len(matched))
		for j, f := range matched {
			refs[j] = urlFor(f)
		}
		if slices.Equal(existing, refs) {
			continue
		}
		p.Images = refs
		p.Image = refs[0]
		changed++
	}
	return changed
}

// Prune keeps only the hero image of every product and aligns Image with
// it. It returns the number of galleries trimmed.
func Prune(products []catalog.Product) int {
	cleaned := 0
	for i := range products {
		p := &products[i]
		switch {
		case len(p.Images) > 1:
			p.Images = p.Images[:1:1]
			p.Image = p.Images[0]
			cleaned++
		case len(p.Images) == 1:
			p.Image = p.Images[0]
		}
	}
	return cleaned
}

// NaturalCompare orders strings case-insensitively with digit runs compared
// by value, so "C2" sorts before "C10".
func NaturalCompare(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		da, db := leadingDigits(a), leadingDigits(b)
		if da != "" && db != "" {
			if c := compareNumeric(da, db); c != 0 {
				return c
			}
			a, b = a[len(da):], b[len(db):]
			continue
		}
		if a[0] != b[0] {
			if a[0] < b[0] {
				return -1
			}
			return 1
		}
		a, b = a[1:], b[1:]
	}
	return len(a) - len(b)
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func compareNumeric(a, b string) int {
	a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
