package imageloader

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	exiftool "github.com/barasher/go-exiftool"
)

// rawExtensions are the camera RAW formats with extractable previews.
var rawExtensions = []string{".dng", ".raf", ".arw", ".nef", ".cr2", ".cr3", ".nrw", ".srf", ".orf", ".rw2", ".pef"}

// previewTags are tried in order; cameras differ in which preview they
// embed, CR3 files in particular often only carry the large preview.
var previewTags = []string{"PreviewImage", "JpgFromRaw", "LargePreviewImage", "ThumbnailImage"}

// RawPreviewLoader extracts the embedded preview JPEG from RAW camera files
// via exiftool. Hashing the preview matches the camera's own JPEG rendering
// far better than demosaicing the sensor data would.
type RawPreviewLoader struct {
	et *exiftool.Exiftool
}

// NewRawPreviewLoader starts a background exiftool process. Fails when the
// exiftool binary is not installed.
func NewRawPreviewLoader() (*RawPreviewLoader, error) {
	et, err := exiftool.NewExiftool(exiftool.ExtractAllBinaryMetadata())
	if err != nil {
		return nil, fmt.Errorf("starting exiftool: %w", err)
	}
	return &RawPreviewLoader{et: et}, nil
}

func (l *RawPreviewLoader) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, raw := range rawExtensions {
		if ext == raw {
			_, err := os.Stat(path)
			return err == nil
		}
	}
	return false
}

func (l *RawPreviewLoader) Load(path string) (image.Image, error) {
	metas := l.et.ExtractMetadata(path)
	if len(metas) == 0 {
		return nil, fmt.Errorf("exiftool returned no metadata for %s", path)
	}
	meta := metas[0]
	if meta.Err != nil {
		return nil, fmt.Errorf("exiftool %s: %w", path, meta.Err)
	}

	for _, tag := range previewTags {
		value, err := meta.GetString(tag)
		if err != nil {
			continue
		}
		encoded, ok := strings.CutPrefix(value, "base64:")
		if !ok {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		return img, nil
	}

	return nil, fmt.Errorf("no decodable preview image in %s", path)
}

// Close stops the background exiftool process.
func (l *RawPreviewLoader) Close() error {
	return l.et.Close()
}
