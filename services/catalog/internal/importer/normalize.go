package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/slug"
)

// DefaultCurrency is used for rows without a currency column.
const DefaultCurrency = "NGN"

var listSeparator = regexp.MustCompile(`[,;]+`)

// SplitList splits a comma or semicolon separated cell, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range listSeparator.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Normalize converts a row into a product. index is the row's position in
// the whole import and supplies the id of rows without one. A non-empty
// category overrides the row's own.
func Normalize(row Row, index int, category string) (catalog.Product, error) {
	id := row.Get("id")
	if id == "" {
		id = strconv.Itoa(index + 1)
	}
	name := row.Get("name")

	price, err := parseNumber(row.Get("price"))
	if err != nil {
		return catalog.Product{}, fmt.Errorf("row %d (id %s): invalid price: %w", index+1, id, err)
	}
	inventory, err := parseNumber(row.Get("inventory", "stock"))
	if err != nil {
		return catalog.Product{}, fmt.Errorf("row %d (id %s): invalid inventory: %w", index+1, id, err)
	}

	p := catalog.Product{
		ID:          id,
		Name:        name,
		Slug:        row.Get("slug"),
		Category:    row.Get("category"),
		Price:       price,
		Currency:    strings.ToUpper(row.Get("currency")),
		Images:      []string{},
		Description: row.Get("description"),
		Featured:    strings.EqualFold(row.Get("featured"), "true"),
		Inventory:   int(inventory),
		Tags:        SplitList(row.Get("tags")),
	}
	if p.Slug == "" {
		p.Slug = slug.Generate(name)
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if category != "" {
		p.Category = category
	}
	return p, nil
}

// parseNumber accepts blanks as zero and tolerates thousands separators.
func parseNumber(s string) (float64, error) {
	s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
