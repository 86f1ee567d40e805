package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	pkgcatalog "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httpclient"
)

// Provider returns a complete, validated catalog on demand.
type Provider interface {
	FetchSnapshot(ctx context.Context) ([]pkgcatalog.Product, error)
	// Source names where snapshots come from, for logs and metrics.
	Source() string
}

// FileProvider reads products.json from the local filesystem.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for the catalog file at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Path returns the catalog file path.
func (p *FileProvider) Path() string { return p.path }

// Source implements Provider.
func (p *FileProvider) Source() string { return "file:" + p.path }

// FetchSnapshot implements Provider.
func (p *FileProvider) FetchSnapshot(ctx context.Context) ([]pkgcatalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	products, err := pkgcatalog.Load(p.path)
	if err != nil {
		return nil, err
	}
	if err := pkgcatalog.Validate(products); err != nil {
		return nil, fmt.Errorf("validate %s: %w", p.path, err)
	}
	return products, nil
}

// HTTPProvider fetches products.json from a URL. Each request carries a
// t=<unix millis> parameter so intermediary caches never serve a stale copy.
type HTTPProvider struct {
	url    string
	client httpclient.Getter
	now    func() time.Time
}

// NewHTTPProvider creates a provider for rawURL using client.
func NewHTTPProvider(rawURL string, client httpclient.Getter) (*HTTPProvider, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("catalog url must be http or https, got %q", rawURL)
	}
	return &HTTPProvider{url: rawURL, client: client, now: time.Now}, nil
}

// Source implements Provider.
func (p *HTTPProvider) Source() string { return p.url }

// FetchSnapshot implements Provider.
func (p *HTTPProvider) FetchSnapshot(ctx context.Context) ([]pkgcatalog.Product, error) {
	u, _ := url.Parse(p.url)
	q := u.Query()
	q.Set("t", strconv.FormatInt(p.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	resp, err := p.client.Get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("fetch catalog: %w", httpclient.ParseResponseError(resp, "catalog"))
	}

	products, err := pkgcatalog.Decode(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := pkgcatalog.Validate(products); err != nil {
		return nil, fmt.Errorf("validate %s: %w", p.url, err)
	}
	return products, nil
}
