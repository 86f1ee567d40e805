package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrMissingName is returned when a product record has no "name" key. An
// empty name is allowed; an absent one is a malformed record.
var ErrMissingName = errors.New("product record has no name")

// Product is one storefront catalog record. ID, Name and Category are the
// fields search reads; everything else is carried through as-is. A missing
// id decodes as "" and is still searchable by name. Keys the
// struct does not know about are kept in Extra and written back on encode.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug,omitempty"`
	Category    string   `json:"category,omitempty"`
	Price       float64  `json:"price" validate:"gte=0"`
	Currency    string   `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
	Image       string   `json:"image,omitempty" validate:"imageref"`
	Images      []string `json:"images" validate:"dive,imageref"`
	Description string   `json:"description,omitempty"`
	Featured    bool     `json:"featured"`
	Inventory   int      `json:"inventory" validate:"gte=0"`
	Tags        []string `json:"tags,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// productFields lists the JSON keys owned by Product's typed fields.
var productFields = map[string]struct{}{
	"id": {}, "name": {}, "slug": {}, "category": {}, "price": {}, "currency": {},
	"image": {}, "images": {}, "description": {}, "featured": {}, "inventory": {}, "tags": {},
}

type productAlias Product

// UnmarshalJSON decodes a record, accepting numeric ids and rejecting
// records without a "name" key.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw["id"])
	if err != nil {
		return err
	}
	if _, ok := raw["name"]; !ok {
		if id != "" {
			return fmt.Errorf("product %q: %w", id, ErrMissingName)
		}
		return ErrMissingName
	}
	delete(raw, "id")

	rest, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var a productAlias
	if err := json.Unmarshal(rest, &a); err != nil {
		return fmt.Errorf("product %q: %w", id, err)
	}
	a.ID = id

	for k, v := range raw {
		if _, known := productFields[k]; known {
			continue
		}
		if a.Extra == nil {
			a.Extra = make(map[string]json.RawMessage)
		}
		a.Extra[k] = v
	}

	*p = Product(a)
	return nil
}

// MarshalJSON writes the typed fields followed by any Extra keys in sorted
// order.
func (p Product) MarshalJSON() ([]byte, error) {
	a := productAlias(p)
	if a.Images == nil {
		a.Images = []string{}
	}
	base, err := marshalNoEscape(a)
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		if _, known := productFields[k]; !known {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	for _, k := range keys {
		buf.WriteByte(',')
		key, _ := json.Marshal(k)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(p.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode product id %s: %w", raw, err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// PrimaryImage returns Image, or the first gallery entry when Image is empty.
func (p Product) PrimaryImage() string {
	if p.Image != "" {
		return p.Image
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Clone returns a copy that shares no slices or maps with p.
func (p Product) Clone() Product {
	c := p
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	if p.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return c
}
