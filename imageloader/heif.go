package imageloader

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	heif "github.com/vegidio/heif-go"
)

// HeifLoader decodes HEIC/HEIF images. Registered only when enabled in
// configuration; phone photo libraries are full of these but the default
// scan sticks to the common formats.
type HeifLoader struct{}

func (l *HeifLoader) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".heic" && ext != ".heif" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (l *HeifLoader) Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := heif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode HEIF %s: %w", path, err)
	}
	return img, nil
}
