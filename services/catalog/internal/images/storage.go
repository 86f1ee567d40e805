// Package images publishes product images to the location the storefront
// serves them from: a local directory or an S3-compatible bucket.
package images

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"
)

// Storage stores images under flat file names.
type Storage interface {
	// Put writes r under name, replacing any existing object.
	Put(ctx context.Context, name string, r io.Reader) error
	// Exists reports whether an object named name is stored.
	Exists(ctx context.Context, name string) (bool, error)
	// URL returns the reference a catalog record should carry for name.
	URL(name string) string
}

// Extensions lists the file extensions treated as images.
var Extensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".svg": {},
}

// IsImage reports whether name has an image extension.
func IsImage(name string) bool {
	_, ok := Extensions[strings.ToLower(path.Ext(name))]
	return ok
}

// ContentType guesses the MIME type of name from its extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
