package scanner_test

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"imagedupes/database"
	"imagedupes/fingerprint"
	"imagedupes/imageloader"
	"imagedupes/scanner"
)

// writePNG writes a PNG whose content is derived from seed, so different
// seeds give different pictures.
func writePNG(t *testing.T, path string, seed uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(x*8) ^ (seed * 37)
			if (x/4+y/4)%2 == 0 {
				v = 255 - v
			}
			img.Set(x, y, color.RGBA{R: v, G: v ^ seed, B: seed, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	in, err := os.Open(src)
	if err != nil {
		t.Fatalf("open %s: %v", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		t.Fatalf("create %s: %v", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		t.Fatalf("copy %s: %v", dst, err)
	}
}

func buildFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "01_a.png"), 1)
	writePNG(t, filepath.Join(dir, "02_b.png"), 2)
	copyFile(t, filepath.Join(dir, "02_b.png"), filepath.Join(dir, "03_b_copy.png"))
	if err := os.WriteFile(filepath.Join(dir, "04_broken.jpg"), []byte("not actually a jpeg"), 0644); err != nil {
		t.Fatalf("write broken: %v", err)
	}
	writePNG(t, filepath.Join(dir, "05_c.png"), 3)
	writePNG(t, filepath.Join(dir, "06_d.PNG"), 4)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	return dir
}

func defaultOptions(dir string) scanner.Options {
	return scanner.Options{
		FolderPath: dir,
		Extensions: imageloader.DefaultExtensions,
		GridSize:   8,
		HashKind:   fingerprint.KindAverage,
		Workers:    4,
	}
}

func TestScanBatch(t *testing.T) {
	dir := buildFixture(t)
	registry := imageloader.NewRegistry(imageloader.NewDefaultLoader(imageloader.DefaultExtensions))

	result, err := scanner.Scan(registry, defaultOptions(dir))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if result.FilesFound != 6 {
		t.Errorf("FilesFound = %d, want 6", result.FilesFound)
	}
	if len(result.Records) != 5 {
		t.Fatalf("got %d records, want 5", len(result.Records))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(result.Failures))
	}
	if filepath.Base(result.Failures[0].Path) != "04_broken.jpg" {
		t.Errorf("failure path = %s, want 04_broken.jpg", result.Failures[0].Path)
	}

	// Records keep walk order even though extraction runs in parallel.
	wantOrder := []string{"01_a.png", "02_b.png", "03_b_copy.png", "05_c.png", "06_d.PNG"}
	for i, rec := range result.Records {
		if filepath.Base(rec.Path) != wantOrder[i] {
			t.Errorf("record %d = %s, want %s", i, filepath.Base(rec.Path), wantOrder[i])
		}
		if rec.Size <= 0 {
			t.Errorf("record %s has size %d", rec.Path, rec.Size)
		}
	}

	// A byte copy hashes to the identical fingerprint.
	d, err := fingerprint.Distance(result.Records[1].Fingerprint, result.Records[2].Fingerprint)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if d != 0 {
		t.Errorf("byte copy distance = %d, want 0", d)
	}
}

func TestScanDeterministic(t *testing.T) {
	dir := buildFixture(t)
	registry := imageloader.NewRegistry(imageloader.NewDefaultLoader(imageloader.DefaultExtensions))

	first, err := scanner.Scan(registry, defaultOptions(dir))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	second, err := scanner.Scan(registry, defaultOptions(dir))
	if err != nil {
		t.Fatalf("Scan again: %v", err)
	}

	if len(first.Records) != len(second.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(first.Records), len(second.Records))
	}
	for i := range first.Records {
		if first.Records[i].Path != second.Records[i].Path {
			t.Errorf("record %d order changed: %s vs %s", i, first.Records[i].Path, second.Records[i].Path)
		}
		if d, _ := fingerprint.Distance(first.Records[i].Fingerprint, second.Records[i].Fingerprint); d != 0 {
			t.Errorf("record %d fingerprint changed, distance %d", i, d)
		}
	}
}

func TestScanUsesCache(t *testing.T) {
	dir := buildFixture(t)
	registry := imageloader.NewRegistry(imageloader.NewDefaultLoader(imageloader.DefaultExtensions))

	cache, err := database.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open cache: %v", err)
	}
	defer cache.Close()

	opts := defaultOptions(dir)
	opts.Cache = cache

	first, err := scanner.Scan(registry, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n, _ := cache.Count(); n != len(first.Records) {
		t.Errorf("cache holds %d entries, want %d", n, len(first.Records))
	}

	// Corrupt a file's bytes while keeping its size and mtime. A second
	// scan must serve it from the cache without touching the pixels.
	target := filepath.Join(dir, "01_a.png")
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	garbage := make([]byte, info.Size())
	if err := os.WriteFile(target, garbage, 0644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := os.Chtimes(target, info.ModTime(), info.ModTime()); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	second, err := scanner.Scan(registry, opts)
	if err != nil {
		t.Fatalf("Scan with cache: %v", err)
	}
	if len(second.Failures) != 1 {
		t.Fatalf("cached rescan failures = %d, want 1 (only the broken jpg)", len(second.Failures))
	}
	if len(second.Records) != len(first.Records) {
		t.Fatalf("cached rescan records = %d, want %d", len(second.Records), len(first.Records))
	}
	if d, _ := fingerprint.Distance(first.Records[0].Fingerprint, second.Records[0].Fingerprint); d != 0 {
		t.Errorf("cache returned a different fingerprint, distance %d", d)
	}
}

func TestCollectFilesFilters(t *testing.T) {
	dir := buildFixture(t)

	paths, err := scanner.CollectFiles(dir, []string{".png"}, nil)
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}
	if len(paths) != 5 {
		t.Errorf("got %d paths, want 5 (.png/.PNG only)", len(paths))
	}
	for _, p := range paths {
		if filepath.Base(p) == "04_broken.jpg" || filepath.Base(p) == "notes.txt" {
			t.Errorf("CollectFiles included %s", p)
		}
	}
}
