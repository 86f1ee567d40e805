package catalog

import (
	"sync/atomic"
	"time"

	pkgcatalog "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
)

// Snapshot is one immutable version of the catalog. Callers must not modify
// Products.
type Snapshot struct {
	Products []pkgcatalog.Product
	Version  uint64
	LoadedAt time.Time
	Source   string
}

// Store holds the catalog snapshot in service. Replace swaps the whole
// snapshot atomically, so a reader always sees one complete version.
type Store struct {
	current atomic.Pointer[Snapshot]
}

var emptySnapshot = &Snapshot{Products: []pkgcatalog.Product{}}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current snapshot; before the first Replace it is an
// empty snapshot with version 0.
func (s *Store) Snapshot() *Snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	return emptySnapshot
}

// Replace installs products as the new snapshot and returns it.
func (s *Store) Replace(products []pkgcatalog.Product, source string) *Snapshot {
	if products == nil {
		products = []pkgcatalog.Product{}
	}
	for {
		prev := s.current.Load()
		next := &Snapshot{
			Products: products,
			Version:  1,
			LoadedAt: time.Now().UTC(),
			Source:   source,
		}
		if prev != nil {
			next.Version = prev.Version + 1
		}
		if s.current.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// LastUpdated returns when the current snapshot was installed, or the zero
// time if none has been.
func (s *Store) LastUpdated() time.Time {
	return s.Snapshot().LoadedAt
}

// Ready reports whether at least one snapshot has been installed.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// Find returns the product with the given id from the current snapshot.
func (s *Store) Find(id string) (pkgcatalog.Product, bool) {
	return s.Snapshot().Find(id)
}

// Find returns the product with the given id.
func (s *Snapshot) Find(id string) (pkgcatalog.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return pkgcatalog.Product{}, false
}
