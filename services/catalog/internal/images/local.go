package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// DefaultURLPrefix is where the storefront serves public/data/images from.
const DefaultURLPrefix = "/data/images"

// LocalStorage stores images in a directory served by the storefront.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

// NewLocalStorage stores images in dir, referenced as urlPrefix/<name>.
func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	return &LocalStorage{dir: dir, urlPrefix: urlPrefix}
}

// Dir returns the storage directory.
func (s *LocalStorage) Dir() string { return s.dir }

// Put writes r to a temporary file and renames it into place.
func (s *LocalStorage) Put(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".img-*")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write image %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close image %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod image %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("rename image %s: %w", name, err)
	}
	return nil
}

// Exists stats the image file.
func (s *LocalStorage) Exists(_ context.Context, name string) (bool, error) {
	p, err := s.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat image %s: %w", name, err)
	}
}

// URL returns urlPrefix/name.
func (s *LocalStorage) URL(name string) string {
	return path.Join(s.urlPrefix, name)
}

// List returns the image file names in the directory. A missing directory
// is empty.
func (s *LocalStorage) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read image dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsImage(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *LocalStorage) path(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
