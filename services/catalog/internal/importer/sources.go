package importer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/images"
)

// IsRemote reports whether ref is an http(s) URL.
func IsRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Resolver finds the image files and URLs a row refers to. Local images
// are looked up next to the import file and in the storefront image dir.
type Resolver struct {
	InputDir  string
	ImagesDir string
}

// Resolve expands a row's image cell into sources: URLs and local paths.
// Unresolvable entries are kept verbatim. An empty cell looks for files
// named after the product id.
func (r Resolver) Resolve(raw, id string) []string {
	parts := SplitList(raw)
	if len(parts) == 0 {
		return r.FindByBase(id)
	}

	var out []string
	for _, p := range parts {
		if IsRemote(p) {
			out = append(out, p)
			continue
		}

		if local := r.local(p); local != "" {
			out = append(out, local)
			out = append(out, without(r.FindByBase(baseName(local)), local)...)
			continue
		}

		if extras := r.FindByBase(p); len(extras) > 0 {
			out = append(out, extras...)
		} else {
			out = append(out, p)
		}
	}
	return dedupe(out)
}

// local returns the existing file p names, relative to the input dir, or
// under the images dir for site paths such as "/images/x.jpg".
func (r Resolver) local(p string) string {
	if !filepath.IsAbs(p) {
		if candidate := filepath.Join(r.InputDir, p); fileExists(candidate) {
			return candidate
		}
	}
	if strings.HasPrefix(p, "/images") || strings.HasPrefix(p, "/data/images") {
		if candidate := filepath.Join(r.ImagesDir, filepath.Base(p)); fileExists(candidate) {
			return candidate
		}
	}
	if filepath.IsAbs(p) && fileExists(p) {
		return p
	}
	return ""
}

// FindByBase lists image files whose base name is base, or starts with
// base followed by "(", "-" or "_".
func (r Resolver) FindByBase(base string) []string {
	if base == "" {
		return nil
	}
	var out []string
	for _, dir := range []string{r.InputDir, r.ImagesDir} {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || !images.IsImage(e.Name()) {
				continue
			}
			if matchesBase(baseName(e.Name()), base) {
				out = append(out, filepath.Join(dir, e.Name()))
			}
		}
	}
	return dedupe(out)
}

func matchesBase(name, base string) bool {
	if name == base {
		return true
	}
	for _, sep := range []string{"(", "-", "_"} {
		if strings.HasPrefix(name, base+sep) {
			return true
		}
	}
	return false
}

func baseName(p string) string {
	b := filepath.Base(p)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func without(list []string, drop string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != drop {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := list[:0:0]
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
