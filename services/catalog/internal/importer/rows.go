// Package importer turns spreadsheet exports into the storefront's
// products.json, optionally publishing the product images alongside.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
)

// ErrUnsupportedFile is returned for inputs that are neither CSV nor XLSX.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Row is one spreadsheet row keyed by lower-cased header.
type Row map[string]string

// Get returns the trimmed value of the first non-empty column among keys.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// Sheet is a named block of rows. Category, when set, overrides the
// category column of every row.
type Sheet struct {
	Name     string
	Category string
	Rows     []Row
}

// sheetOrder maps workbook sheet positions to categories when the sheet
// name does not say which category it holds.
var sheetOrder = []string{catalog.CategoryJewelries, catalog.CategoryClothings, catalog.CategoryDrinks}

// SheetCategory picks the category of a workbook sheet from its name,
// falling back to its position and then to clothings.
func SheetCategory(name string, index int) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "jewel"):
		return catalog.CategoryJewelries
	case strings.Contains(lower, "cloth"):
		return catalog.CategoryClothings
	case strings.Contains(lower, "drink"):
		return catalog.CategoryDrinks
	}
	if index >= 0 && index < len(sheetOrder) {
		return sheetOrder[index]
	}
	return catalog.CategoryClothings
}

// ReadFile reads a .csv or .xlsx export.
func ReadFile(path string) ([]Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		rows, err := ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []Sheet{{Name: filepath.Base(path), Rows: rows}}, nil
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
}

// ReadCSV reads a header row followed by data rows.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return toRows(records), nil
}

func readWorkbook(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	var sheets []Sheet
	for i, name := range f.GetSheetList() {
		records, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{
			Name:     name,
			Category: SheetCategory(name, i),
			Rows:     toRows(records),
		})
	}
	return sheets, nil
}

// toRows keys records by the first record's headers and drops blank rows.
func toRows(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(headers))
		blank := true
		for i, h := range headers {
			if h == "" || i >= len(rec) {
				continue
			}
			row[h] = rec[i]
			if strings.TrimSpace(rec[i]) != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows
}
