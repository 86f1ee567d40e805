package images

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
)

// Palette is the colour scheme and file prefix of a category's placeholders.
type Palette struct {
	Category string
	Prefix   string
	Label    string
	Primary  string
	Accent   string
}

// Palettes returns the placeholder palette of every storefront category.
func Palettes() []Palette {
	return []Palette{
		{Category: catalog.CategoryJewelries, Prefix: "J", Label: "Jewelries", Primary: "#c9a961", Accent: "#d4af37"},
		{Category: catalog.CategoryClothings, Prefix: "C", Label: "Clothing", Primary: "#4a90e2", Accent: "#357abd"},
		{Category: catalog.CategoryDrinks, Prefix: "D", Label: "Drinks", Primary: "#e74c3c", Accent: "#c0392b"},
	}
}

var productTmpl = template.Must(template.New("product").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="400" height="400" viewBox="0 0 400 400">
  <defs>
    <linearGradient id="g" x1="0%" y1="0%" x2="100%" y2="100%">
      <stop offset="0%" stop-color="{{.Primary}}"/>
      <stop offset="100%" stop-color="{{.Accent}}"/>
    </linearGradient>
  </defs>
  <rect width="400" height="400" fill="url(#g)"/>
  <circle cx="200" cy="160" r="80" fill="#ffffff" fill-opacity="0.2"/>
  <circle cx="320" cy="320" r="40" fill="#ffffff" fill-opacity="0.1"/>
  <rect x="60" y="270" width="280" height="70" rx="8" fill="#ffffff" fill-opacity="0.15"/>
  <text x="200" y="175" font-family="Arial, sans-serif" font-size="48" font-weight="bold" fill="#ffffff" text-anchor="middle">{{.Code}}</text>
  <text x="200" y="312" font-family="Arial, sans-serif" font-size="20" fill="#ffffff" text-anchor="middle">Premium Product</text>
</svg>
`))

var heroTmpl = template.Must(template.New("hero").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="1200" height="600" viewBox="0 0 1200 600">
  <defs>
    <linearGradient id="g" x1="0%" y1="0%" x2="100%" y2="0%">
      <stop offset="0%" stop-color="{{.Primary}}"/>
      <stop offset="100%" stop-color="{{.Accent}}"/>
    </linearGradient>
  </defs>
  <rect width="1200" height="600" fill="url(#g)"/>
  <circle cx="1000" cy="120" r="180" fill="#ffffff" fill-opacity="0.1"/>
  <text x="600" y="290" font-family="Arial, sans-serif" font-size="96" font-weight="bold" fill="#ffffff" text-anchor="middle">{{.Label}}</text>
  <text x="600" y="370" font-family="Arial, sans-serif" font-size="36" fill="#ffffff" text-anchor="middle">Curated Collection</text>
</svg>
`))

// ProductSVG renders the placeholder for product n of a category.
func ProductSVG(p Palette, n int) ([]byte, error) {
	var buf bytes.Buffer
	err := productTmpl.Execute(&buf, struct {
		Palette
		Code string
	}{p, fmt.Sprintf("%s%d", p.Prefix, n)})
	if err != nil {
		return nil, fmt.Errorf("render %s%d: %w", p.Prefix, n, err)
	}
	return buf.Bytes(), nil
}

// HeroSVG renders a category's hero banner.
func HeroSVG(p Palette) ([]byte, error) {
	var buf bytes.Buffer
	if err := heroTmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render %s hero: %w", p.Category, err)
	}
	return buf.Bytes(), nil
}

// ProductName is the file name of placeholder n, e.g. "J3.jpg".
func ProductName(p Palette, n int) string {
	return fmt.Sprintf("%s%d.jpg", p.Prefix, n)
}

// HeroName is the file name of a category hero, e.g. "hero/drinks-hero.jpg".
func HeroName(p Palette) string {
	return fmt.Sprintf("hero/%s-hero.jpg", p.Category)
}

// WritePlaceholders stores perCategory product placeholders and one hero per
// category, returning the names written.
func WritePlaceholders(ctx context.Context, store Storage, perCategory int) ([]string, error) {
	var written []string
	for _, p := range Palettes() {
		for n := 1; n <= perCategory; n++ {
			svg, err := ProductSVG(p, n)
			if err != nil {
				return written, err
			}
			name := ProductName(p, n)
			if err := store.Put(ctx, name, bytes.NewReader(svg)); err != nil {
				return written, err
			}
			written = append(written, name)
		}

		svg, err := HeroSVG(p)
		if err != nil {
			return written, err
		}
		name := HeroName(p)
		if err := store.Put(ctx, name, bytes.NewReader(svg)); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}
