// Package generator produces demo catalogs from declarative presets.
package generator

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/validator"
)

//go:embed presets.yaml
var builtinPresets []byte

// DefaultPreset is generated when no preset is named.
const DefaultPreset = "prefixed"

// Group describes a run of products in one category.
type Group struct {
	Category      string   `yaml:"category" validate:"required"`
	Count         int      `yaml:"count" validate:"gte=1,lte=1000"`
	Name          string   `yaml:"name" validate:"required"`
	Slug          string   `yaml:"slug"`
	Image         string   `yaml:"image"`
	ImageOffset   int      `yaml:"image_offset" validate:"gte=0"`
	PriceBase     float64  `yaml:"price_base" validate:"gte=0"`
	PriceStep     float64  `yaml:"price_step" validate:"gte=0"`
	Currency      string   `yaml:"currency" validate:"omitempty,len=3,uppercase"`
	InventoryBase int      `yaml:"inventory_base" validate:"gte=0"`
	FeaturedEvery int      `yaml:"featured_every" validate:"gte=0"`
	Description   string   `yaml:"description"`
	Tags          []string `yaml:"tags"`
}

// Preset is a named catalog recipe.
type Preset struct {
	Description string  `yaml:"description"`
	Groups      []Group `yaml:"groups" validate:"required,min=1,dive"`
}

// Presets maps preset names to recipes.
type Presets map[string]Preset

// Builtin returns the presets shipped with catalogctl.
func Builtin() (Presets, error) {
	return Parse(bytes.NewReader(builtinPresets))
}

// LoadFile reads presets from a YAML file.
func LoadFile(path string) (Presets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open presets: %w", err)
	}
	defer f.Close()

	presets, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return presets, nil
}

// Parse decodes and validates YAML presets.
func Parse(r io.Reader) (Presets, error) {
	var presets Presets
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&presets); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("decode presets: no presets defined")
	}
	for name, p := range presets {
		if err := validator.Validate(p); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return presets, nil
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate builds the named preset's catalog. Ids run from 1 across groups.
func (p Presets) Generate(name string) ([]catalog.Product, error) {
	preset, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(p.Names(), ", "))
	}

	var products []catalog.Product
	for _, g := range preset.Groups {
		for n := 1; n <= g.Count; n++ {
			products = append(products, g.product(len(products)+1, n))
		}
	}
	return products, nil
}

func (g Group) product(id, n int) catalog.Product {
	r := strings.NewReplacer(
		"{n}", strconv.Itoa(n),
		"{img}", strconv.Itoa(n+g.ImageOffset),
	)

	p := catalog.Product{
		ID:          strconv.Itoa(id),
		Name:        r.Replace(g.Name),
		Slug:        r.Replace(g.Slug),
		Category:    g.Category,
		Price:       g.PriceBase + float64(n)*g.PriceStep,
		Currency:    g.Currency,
		Images:      []string{},
		Description: r.Replace(g.Description),
		Featured:    g.FeaturedEvery > 0 && n%g.FeaturedEvery == 0,
		Inventory:   g.InventoryBase + n,
	}
	if p.Currency == "" {
		p.Currency = "NGN"
	}
	if g.Image != "" {
		p.Image = catalog.ImagesPath + r.Replace(g.Image)
		p.Images = []string{p.Image}
	}
	if len(g.Tags) > 0 {
		p.Tags = append([]string(nil), g.Tags...)
	}
	return p
}
