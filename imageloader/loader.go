// Package imageloader decodes image files into pixel grids for hashing.
// Loaders are registered per format family, following the registry pattern:
// the first loader that recognizes a path decodes it.
package imageloader

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoLoader is returned when no registered loader recognizes a file.
var ErrNoLoader = errors.New("no registered loader for file")

// Loader decodes one family of image formats.
type Loader interface {
	CanLoad(path string) bool
	Load(path string) (image.Image, error)
}

// DefaultExtensions are the formats the standard decoders handle.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// DefaultLoader handles the common formats covered by the stdlib and
// golang.org/x/image decoders registered above.
type DefaultLoader struct {
	exts map[string]bool
}

// NewDefaultLoader builds a loader restricted to the given extensions
// (lowercase, dot included). Nil means DefaultExtensions.
func NewDefaultLoader(extensions []string) *DefaultLoader {
	if extensions == nil {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	return &DefaultLoader{exts: exts}
}

func (l *DefaultLoader) CanLoad(path string) bool {
	if !l.exts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (l *DefaultLoader) Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Registry holds the active loaders and dispatches by path.
type Registry struct {
	loaders []Loader
}

// NewRegistry creates a registry with the given loaders, tried in order.
func NewRegistry(loaders ...Loader) *Registry {
	return &Registry{loaders: loaders}
}

// Register appends a loader to the registry.
func (r *Registry) Register(loader Loader) {
	r.loaders = append(r.loaders, loader)
}

// CanLoad reports whether any registered loader recognizes the file.
func (r *Registry) CanLoad(path string) bool {
	for _, loader := range r.loaders {
		if loader.CanLoad(path) {
			return true
		}
	}
	return false
}

// Load decodes the image using the first loader that recognizes it.
func (r *Registry) Load(path string) (image.Image, error) {
	for _, loader := range r.loaders {
		if loader.CanLoad(path) {
			return loader.Load(path)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoLoader, path)
}

// Close releases any loaders that hold external resources.
func (r *Registry) Close() error {
	var first error
	for _, loader := range r.loaders {
		if c, ok := loader.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
