package catalog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	pkgcatalog "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httpclient"
)

const (
	// GalleryVariants is how many numbered siblings are probed per product.
	GalleryVariants = 6
	// MinGallerySize is the length galleries are padded to.
	MinGallerySize = 4
)

// numberedImage matches a site image named <base>_<n>.<ext>, e.g.
// /data/images/C1_1.jpg.
var numberedImage = regexp.MustCompile(`(?i)(/data/images/)([A-Za-z0-9\-]+?)_(\d+)\.(jpg|jpeg|png|webp)$`)

// Prober reports whether a site image path exists.
type Prober interface {
	Exists(ctx context.Context, path string) bool
}

// FSProber resolves site paths against a public directory on disk.
type FSProber struct {
	root string
}

// NewFSProber creates a prober rooted at the site's public directory.
func NewFSProber(root string) *FSProber {
	return &FSProber{root: root}
}

// Exists implements Prober.
func (p *FSProber) Exists(_ context.Context, path string) bool {
	rel := filepath.FromSlash(strings.TrimPrefix(path, "/"))
	if !filepath.IsLocal(rel) {
		return false
	}
	info, err := os.Stat(filepath.Join(p.root, rel))
	return err == nil && !info.IsDir()
}

// HTTPProber checks image paths with HEAD requests against a site base URL.
type HTTPProber struct {
	base   string
	client httpclient.Getter
}

// NewHTTPProber creates a prober for the site at base.
func NewHTTPProber(base string, client httpclient.Getter) *HTTPProber {
	return &HTTPProber{base: strings.TrimRight(base, "/"), client: client}
}

// Exists implements Prober.
func (p *HTTPProber) Exists(ctx context.Context, path string) bool {
	resp, err := p.client.Head(ctx, p.base+path)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ExpandGallery returns a copy of p whose Images include every existing
// numbered sibling of its primary image and are padded to MinGallerySize
// with the placeholder.
func ExpandGallery(ctx context.Context, p pkgcatalog.Product, prober Prober) pkgcatalog.Product {
	out := p.Clone()
	images := out.Images
	if images == nil {
		images = []string{}
	}

	if m := numberedImage.FindStringSubmatch(p.PrimaryImage()); m != nil && prober != nil {
		prefix, base, ext := m[1], m[2], m[4]
		for i := 1; i <= GalleryVariants; i++ {
			candidate := fmt.Sprintf("%s%s_%d.%s", prefix, base, i, ext)
			if slices.Contains(images, candidate) {
				continue
			}
			if prober.Exists(ctx, candidate) {
				images = append(images, candidate)
			}
		}
	}

	for len(images) < MinGallerySize {
		images = append(images, pkgcatalog.PlaceholderImage)
	}
	out.Images = images
	return out
}

// ExpandGalleries runs ExpandGallery over products with at most limit probes
// in flight. Output order matches input order.
func ExpandGalleries(ctx context.Context, products []pkgcatalog.Product, prober Prober, limit int) []pkgcatalog.Product {
	out := make([]pkgcatalog.Product, len(products))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range products {
		g.Go(func() error {
			out[i] = ExpandGallery(gctx, p, prober)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
