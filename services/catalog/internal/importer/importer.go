package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httpclient"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/slug"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/images"
)

// maxImageBytes caps a single downloaded or copied image.
const maxImageBytes = 32 << 20

// ErrImageTooLarge marks an image source bigger than the copy limit.
var ErrImageTooLarge = errors.New("image too large")

// Options controls a single import run.
type Options struct {
	// Output is the products.json path.
	Output string
	// PublicDir is the storefront's static root; local images inside it are
	// referenced by site path when images are not copied.
	PublicDir string
	// ImagesDir is searched for images matching a product.
	ImagesDir string
	// ImportsDir receives a timestamped archive when CopyImages is set.
	ImportsDir string

	CopyImages      bool
	OverwriteImages bool
	Concurrency     int
}

// Result summarizes an import.
type Result struct {
	Products  int
	Images    int
	Warnings  int
	Output    string
	ImportDir string
}

// Importer converts spreadsheet exports into products.json.
type Importer struct {
	store  images.Storage
	getter httpclient.Getter
	logger *slog.Logger
	now    func() time.Time

	maxBytes int64
}

// New creates an importer publishing images to store and downloading
// remote images through getter.
func New(store images.Storage, getter httpclient.Getter, logger *slog.Logger) *Importer {
	return &Importer{
		store:  store,
		getter: getter,
		logger: logger,
		now:    time.Now,

		maxBytes: maxImageBytes,
	}
}

// ImportDirName formats t the way import archive directories are named,
// e.g. "2026-10-18T09-30-00-000Z".
func ImportDirName(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format("2006-01-02T15:04:05.000Z"))
}

// Run imports the file at src. The catalog is validated before anything is
// written; image failures are logged and skipped.
func (im *Importer) Run(ctx context.Context, src string, opts Options) (*Result, error) {
	sheets, err := ReadFile(src)
	if err != nil {
		return nil, err
	}
	inputDir, err := filepath.Abs(filepath.Dir(src))
	if err != nil {
		return nil, fmt.Errorf("resolve input dir: %w", err)
	}

	resolver := Resolver{InputDir: inputDir, ImagesDir: opts.ImagesDir}
	var (
		products []catalog.Product
		sources  [][]string
		raws     []string
	)
	for _, sheet := range sheets {
		for _, row := range sheet.Rows {
			p, err := Normalize(row, len(products), sheet.Category)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", sheet.Name, err)
			}
			raw := row.Get("image", "images")
			products = append(products, p)
			sources = append(sources, resolver.Resolve(raw, p.ID))
			raws = append(raws, raw)
		}
	}

	im.logger.InfoContext(ctx, "parsed import file",
		slog.String("file", src),
		slog.Int("sheets", len(sheets)),
		slog.Int("rows", len(products)),
	)

	res := &Result{Products: len(products), Output: opts.Output}
	if opts.CopyImages {
		res.ImportDir = filepath.Join(opts.ImportsDir, ImportDirName(im.now()))
		if err := im.copyImages(ctx, products, sources, opts, res); err != nil {
			return nil, err
		}
	} else {
		for i := range products {
			im.referenceImages(ctx, &products[i], sources[i], raws[i], opts.PublicDir, res)
		}
	}

	if err := catalog.Validate(products); err != nil {
		return nil, fmt.Errorf("imported catalog is invalid: %w", err)
	}
	if err := catalog.Save(opts.Output, products); err != nil {
		return nil, err
	}
	if res.ImportDir != "" {
		if err := catalog.Save(filepath.Join(res.ImportDir, "products.json"), products); err != nil {
			return nil, err
		}
	}

	im.logger.InfoContext(ctx, "catalog written",
		slog.String("output", opts.Output),
		slog.Int("products", res.Products),
		slog.Int("images", res.Images),
		slog.Int("warnings", res.Warnings),
	)
	return res, nil
}

// referenceImages points the product at its sources without copying them.
// URLs are kept; local files are kept only when the storefront serves them.
func (im *Importer) referenceImages(ctx context.Context, p *catalog.Product, sources []string, raw, publicDir string, res *Result) {
	for _, s := range sources {
		if IsRemote(s) {
			p.Images = append(p.Images, s)
			continue
		}
		if !fileExists(s) {
			continue
		}
		if ref, ok := sitePath(publicDir, s); ok {
			p.Images = append(p.Images, ref)
			continue
		}
		res.Warnings++
		im.logger.WarnContext(ctx, "image outside the public dir skipped; use --copy-images to publish it",
			slog.String("product_id", p.ID),
			slog.String("path", s),
		)
	}

	if len(p.Images) > 0 {
		p.Image = p.Images[0]
		return
	}
	if first := SplitList(raw); len(first) > 0 {
		p.Image = fallbackRef(first[0])
	}
}

// sitePath maps a file under publicDir to its storefront path.
func sitePath(publicDir, file string) (string, bool) {
	if publicDir == "" {
		return "", false
	}
	root, err := filepath.Abs(publicDir)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	return "/" + filepath.ToSlash(rel), true
}

// fallbackRef turns an unresolved cell into a reference the storefront can
// try: bare file names live in the image dir.
func fallbackRef(raw string) string {
	switch {
	case IsRemote(raw), strings.HasPrefix(raw, "/"), strings.HasPrefix(strings.ToLower(raw), "data:image/"):
		return raw
	case !strings.Contains(raw, "/"):
		return catalog.ImagesPath + raw
	default:
		return "/" + raw
	}
}

type imageJob struct {
	product int
	index   int
	source  string
	file    string
}

// copyImages archives every source into the import dir and publishes it
// to storage, running up to opts.Concurrency transfers at once.
func (im *Importer) copyImages(ctx context.Context, products []catalog.Product, sources [][]string, opts Options, res *Result) error {
	archiveDir := filepath.Join(res.ImportDir, "images")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return fmt.Errorf("create import dir: %w", err)
	}

	published := make([][]string, len(products))
	var jobs []imageJob
	for i, p := range products {
		published[i] = make([]string, len(sources[i]))
		base := fileBase(p)
		for idx, src := range sources[i] {
			suffix := ""
			if idx > 0 {
				suffix = "(" + strconv.Itoa(idx) + ")"
			}
			jobs = append(jobs, imageJob{
				product: i,
				index:   idx,
				source:  src,
				file:    base + suffix + sourceExt(src),
			})
		}
	}

	names := newNameReserver(im.store, opts.OverwriteImages)
	var warnings sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))
	for _, job := range jobs {
		g.Go(func() error {
			ref, err := im.transfer(gctx, job, archiveDir, names)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				warnings.Lock()
				res.Warnings++
				warnings.Unlock()
				im.logger.WarnContext(gctx, "failed to copy image",
					slog.String("product_id", products[job.product].ID),
					slog.String("source", job.source),
					slog.String("error", err.Error()),
				)
				return nil
			}
			published[job.product][job.index] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("copy images: %w", err)
	}

	for i := range products {
		refs := make([]string, 0, len(published[i]))
		for _, ref := range published[i] {
			if ref != "" {
				refs = append(refs, ref)
			}
		}
		products[i].Images = refs
		products[i].Image = ""
		if len(refs) > 0 {
			products[i].Image = refs[0]
		}
		res.Images += len(refs)
	}
	return nil
}

// transfer fetches one source, archives it and publishes it, returning the
// published reference.
func (im *Importer) transfer(ctx context.Context, job imageJob, archiveDir string, names *nameReserver) (string, error) {
	data, err := im.fetch(ctx, job.source)
	if err != nil {
		return "", err
	}
	name, err := names.Reserve(ctx, job.file)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(archiveDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("archive %s: %w", name, err)
	}
	if err := im.store.Put(ctx, name, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return im.store.URL(name), nil
}

func (im *Importer) fetch(ctx context.Context, source string) ([]byte, error) {
	if !IsRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("image not found: %w", err)
		}
		defer f.Close()
		data, err := readImage(f, im.maxBytes)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return data, nil
	}

	if im.getter == nil {
		return nil, fmt.Errorf("download %s: no http client configured", source)
	}
	resp, err := im.getter.Get(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", source, err)
	}
	defer resp.Body.Close()
	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp, "image host")
	}
	if resp.ContentLength > im.maxBytes {
		return nil, fmt.Errorf("download %s: %w: %d bytes exceeds %d", source, ErrImageTooLarge, resp.ContentLength, im.maxBytes)
	}

	data, err := readImage(resp.Body, im.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return data, nil
}

// readImage reads all of r, failing with ErrImageTooLarge instead of
// truncating when r holds more than limit bytes.
func readImage(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrImageTooLarge, limit)
	}
	return data, nil
}

// fileBase is the readable file name stem of a product's images.
func fileBase(p catalog.Product) string {
	for _, s := range []string{p.Slug, p.ID} {
		if b := slug.FileBase(s); b != "" {
			return b
		}
	}
	return "product"
}

// sourceExt keeps the source's extension, defaulting to .jpg.
func sourceExt(source string) string {
	p := source
	if IsRemote(source) {
		if u, err := url.Parse(source); err == nil {
			p = u.Path
		}
		if ext := path.Ext(p); ext != "" {
			return strings.ToLower(ext)
		}
		return ".jpg"
	}
	if ext := filepath.Ext(p); ext != "" {
		return strings.ToLower(ext)
	}
	return ".jpg"
}

// nameReserver hands out storage names that are unique across concurrent
// transfers and, unless overwriting, free in storage: "x.jpg", "x-1.jpg", ...
type nameReserver struct {
	mu        sync.Mutex
	store     images.Storage
	overwrite bool
	taken     map[string]struct{}
}

func newNameReserver(store images.Storage, overwrite bool) *nameReserver {
	return &nameReserver{store: store, overwrite: overwrite, taken: make(map[string]struct{})}
}

// Reserve returns name or the first free numbered variant of it.
func (n *nameReserver) Reserve(ctx context.Context, name string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		if _, ok := n.taken[candidate]; ok {
			continue
		}
		if !n.overwrite {
			exists, err := n.store.Exists(ctx, candidate)
			if err != nil {
				return "", err
			}
			if exists {
				continue
			}
		}
		n.taken[candidate] = struct{}{}
		return candidate, nil
	}
}
