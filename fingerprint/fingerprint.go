package fingerprint

import (
	"errors"
	"fmt"
	"image"
	"math/bits"
	"strconv"
	"strings"

	"github.com/corona10/goimagehash"
)

// ErrIncompatibleFingerprints is returned when two fingerprints of different
// bit widths are compared. Within a single scan every fingerprint is derived
// with the same grid size, so hitting this is an invariant violation.
var ErrIncompatibleFingerprints = errors.New("fingerprints have different bit widths")

// Kind selects the hashing algorithm used to derive a fingerprint.
type Kind string

const (
	// KindAverage is the native average hash: NxN luminance grid,
	// one bit per cell against the grid mean.
	KindAverage Kind = "average"

	// KindPerception uses goimagehash's DCT-based perception hash at the
	// same grid size. More robust against recompression, slower to compute.
	KindPerception Kind = "perception"
)

// ParseKind validates a hash kind name from configuration.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindAverage:
		return KindAverage, nil
	case KindPerception:
		return KindPerception, nil
	default:
		return "", fmt.Errorf("unknown hash kind %q (expected average or perception)", s)
	}
}

// Fingerprint is a fixed-width bit vector summarizing an image's coarse
// luminance structure. Immutable once computed. Bits are stored row-major,
// most significant bit of the first word first.
type Fingerprint struct {
	words []uint64
	bits  int
}

// New builds a fingerprint from pre-packed words. The word slice is copied.
func New(words []uint64, bitCount int) Fingerprint {
	w := make([]uint64, len(words))
	copy(w, words)
	return Fingerprint{words: w, bits: bitCount}
}

// Bits returns the width of the fingerprint in bits.
func (f Fingerprint) Bits() int {
	return f.bits
}

// Hex renders the fingerprint as a hexadecimal string, one full word at a
// time. Used for cache storage and debug output.
func (f Fingerprint) Hex() string {
	var sb strings.Builder
	for _, w := range f.words {
		fmt.Fprintf(&sb, "%016x", w)
	}
	return sb.String()
}

// ParseHex reconstructs a fingerprint produced by Hex.
func ParseHex(s string, bitCount int) (Fingerprint, error) {
	if bitCount <= 0 {
		return Fingerprint{}, fmt.Errorf("invalid fingerprint bit width %d", bitCount)
	}
	wordCount := (bitCount + 63) / 64
	if len(s) != wordCount*16 {
		return Fingerprint{}, fmt.Errorf("fingerprint hex has %d digits, want %d", len(s), wordCount*16)
	}
	words := make([]uint64, wordCount)
	for i := range words {
		w, err := strconv.ParseUint(s[i*16:(i+1)*16], 16, 64)
		if err != nil {
			return Fingerprint{}, fmt.Errorf("invalid fingerprint hex %q: %w", s, err)
		}
		words[i] = w
	}
	return Fingerprint{words: words, bits: bitCount}, nil
}

// Distance returns the Hamming distance between two fingerprints of equal
// width: the count of differing bit positions. It is symmetric, zero for
// identical fingerprints, and satisfies the triangle inequality.
func Distance(a, b Fingerprint) (int, error) {
	if a.bits != b.bits || len(a.words) != len(b.words) {
		return 0, fmt.Errorf("%w: %d vs %d bits", ErrIncompatibleFingerprints, a.bits, b.bits)
	}
	d := 0
	for i := range a.words {
		d += bits.OnesCount64(a.words[i] ^ b.words[i])
	}
	return d, nil
}

// FromImage reduces a decoded image to a fingerprint. The image may be any
// color model and any dimensions; the result depends only on pixel data,
// grid size and kind, so re-extracting the same image is deterministic.
func FromImage(img image.Image, grid int, kind Kind) (Fingerprint, error) {
	if grid < 2 {
		return Fingerprint{}, fmt.Errorf("hash grid size %d too small", grid)
	}
	switch kind {
	case KindAverage:
		return averageHash(img, grid), nil
	case KindPerception:
		return perceptionHash(img, grid)
	default:
		return Fingerprint{}, fmt.Errorf("unknown hash kind %q", kind)
	}
}

// averageHash computes the classic average hash: reduce the image to a
// grid x grid luminance matrix with an area-average resample, then emit one
// bit per cell, set when the cell is at or above the grid mean.
func averageHash(img image.Image, grid int) Fingerprint {
	cells := luminanceGrid(img, grid)

	var sum float64
	for _, v := range cells {
		sum += v
	}
	mean := sum / float64(len(cells))

	bitCount := grid * grid
	words := make([]uint64, (bitCount+63)/64)
	for i, v := range cells {
		if v >= mean {
			words[i/64] |= 1 << (63 - uint(i%64))
		}
	}
	return Fingerprint{words: words, bits: bitCount}
}

// perceptionHash delegates to goimagehash and repacks its bit words.
func perceptionHash(img image.Image, grid int) (Fingerprint, error) {
	h, err := goimagehash.ExtPerceptionHash(img, grid, grid)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("perception hash: %w", err)
	}
	return Fingerprint{words: h.GetHash(), bits: h.Bits()}, nil
}

// luminanceGrid reduces an image to grid x grid mean-luminance cells in
// row-major order. Each cell averages its whole source rectangle rather than
// sampling a single point, which keeps the hash stable under minor scaling
// artifacts.
func luminanceGrid(img image.Image, grid int) []float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	cells := make([]float64, grid*grid)
	for row := 0; row < grid; row++ {
		y0 := bounds.Min.Y + row*h/grid
		y1 := bounds.Min.Y + (row+1)*h/grid
		if y1 <= y0 {
			// Source smaller than the grid: fall back to one pixel per cell.
			y1 = y0 + 1
			if y1 > bounds.Max.Y {
				y0, y1 = bounds.Max.Y-1, bounds.Max.Y
			}
		}
		for col := 0; col < grid; col++ {
			x0 := bounds.Min.X + col*w/grid
			x1 := bounds.Min.X + (col+1)*w/grid
			if x1 <= x0 {
				x1 = x0 + 1
				if x1 > bounds.Max.X {
					x0, x1 = bounds.Max.X-1, bounds.Max.X
				}
			}

			var sum float64
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					r, g, b, _ := img.At(x, y).RGBA()
					// ITU-R BT.601 weights, same conversion OpenCV's
					// BGR-to-gray uses.
					sum += 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
				}
			}
			cells[row*grid+col] = sum / float64((y1-y0)*(x1-x0)) / 65535.0 * 255.0
		}
	}
	return cells
}
