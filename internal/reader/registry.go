package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Constructor func(path string) (Reader, error)

type Registry struct {
	readers map[string]Constructor
}

func NewRegistry() *Registry {
	r := &Registry{readers: make(map[string]Constructor)}

	r.readers["gradient"] = func(string) (Reader, error) { return NewGradient(), nil }
	r.readers["blobs"] = func(string) (Reader, error) { return NewBlobs(), nil }
	r.readers["noise"] = func(string) (Reader, error) { return NewNoise(), nil }
	r.readers["imagedir"] = func(path string) (Reader, error) { return OpenImageDir(path) }

	return r
}

func (r *Registry) Open(name, path string) (Reader, error) {
	fn, ok := r.readers[name]
	if !ok {
		return nil, fmt.Errorf("unknown reader: %s", name)
	}
	return fn(path)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.readers))
	for name := range r.readers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect picks a reader name for path: a directory of images maps to
// imagedir, a single image file maps to imagedir over its directory, and
// an empty path falls back to the synthetic blobs sequence.
func (r *Registry) Detect(path string) (string, string, error) {
	if path == "" {
		return "blobs", "", nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", "", err
	}
	if info.IsDir() {
		return "imagedir", path, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return "imagedir", filepath.Dir(path), nil
	}
	return "", "", fmt.Errorf("no suitable reader for %s", path)
}
