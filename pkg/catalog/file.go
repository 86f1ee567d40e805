package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/validator"
)

// Decode reads a JSON array of products. A record without a name fails the
// whole decode with ErrMissingName.
func Decode(r io.Reader) ([]Product, error) {
	var products []Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// Encode writes products as an indented JSON array.
func Encode(w io.Writer, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(products); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// Load reads and decodes a products.json file.
func Load(path string) ([]Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	products, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return products, nil
}

// Save writes products to path through a temp file and rename so readers
// never observe a partially written catalog.
func Save(path string, products []Product) error {
	var buf bytes.Buffer
	if err := Encode(&buf, products); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".products-*.json")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp catalog: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// Validate checks every record's field constraints and that non-empty ids
// are unique.
func Validate(products []Product) error {
	seen := make(map[string]int, len(products))
	for i, p := range products {
		if err := validator.Validate(p); err != nil {
			return fmt.Errorf("product %d (id %q): %w", i, p.ID, err)
		}
		if p.ID == "" {
			continue
		}
		if j, dup := seen[p.ID]; dup {
			return fmt.Errorf("product %d: duplicate id %q (first seen at %d)", i, p.ID, j)
		}
		seen[p.ID] = i
	}
	return nil
}
