// Package scanner walks a folder for image files and reduces each one to a
// fingerprinted record. Extraction runs on a bounded worker pool, but the
// resulting record sequence always preserves the walk enumeration order:
// the clusterer's output depends on it.
package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"imagedupes/database"
	"imagedupes/fingerprint"
	"imagedupes/imageloader"
	"imagedupes/types"
)

// Options defines the options for scanning.
type Options struct {
	FolderPath   string
	Extensions   []string
	GridSize     int
	HashKind     fingerprint.Kind
	Workers      int             // 0 means auto
	Cache        *database.Cache // nil disables caching
	ShowProgress bool
	Logger       *slog.Logger
}

// CollectFiles walks the folder and returns the candidate image paths in
// traversal order. Inaccessible entries are skipped, not fatal.
func CollectFiles(folder string, extensions []string, logger *slog.Logger) ([]string, error) {
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}

	var paths []string
	err := filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if logger != nil {
				logger.Debug("skipping inaccessible path", "path", path, "error", err)
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if exts[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", folder, err)
	}
	return paths, nil
}

// Scan fingerprints every candidate file under the folder. Files that fail
// to decode become ScanFailures; they never abort the batch.
func Scan(registry *imageloader.Registry, opts Options) (*types.ScanResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := CollectFiles(opts.FolderPath, opts.Extensions, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("collected candidate files", "count", len(paths))

	workers := opts.Workers
	if workers <= 0 {
		workers = (runtime.NumCPU() * 3) / 4
		if workers < 1 {
			workers = 1
		}
	}

	tracker := newProgressTracker(len(paths), opts.ShowProgress)
	defer tracker.stop()

	// Each worker writes into its own index slot so the assembled record
	// sequence keeps the enumeration order no matter how extraction
	// interleaves.
	records := make([]*types.ImageRecord, len(paths))
	failures := make([]*types.ScanFailure, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			rec, err := processFile(registry, path, opts, logger)
			if err != nil {
				failures[i] = &types.ScanFailure{Path: path, Err: err}
				logger.Warn("skipping file", "path", path, "error", err)
				tracker.record(false)
				return nil
			}
			records[i] = rec
			tracker.record(true)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &types.ScanResult{FilesFound: len(paths)}
	for i := range paths {
		if records[i] != nil {
			result.Records = append(result.Records, *records[i])
		} else if failures[i] != nil {
			result.Failures = append(result.Failures, *failures[i])
		}
	}
	return result, nil
}

// processFile produces the record for one file: cache hit, or decode, hash
// and cache store.
func processFile(registry *imageloader.Registry, path string, opts Options, logger *slog.Logger) (*types.ImageRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	if opts.Cache != nil {
		fp, takenAt, hit, err := opts.Cache.Lookup(path, info.Size(), info.ModTime(), opts.GridSize, opts.HashKind)
		if err != nil {
			logger.Warn("cache lookup failed", "path", path, "error", err)
		} else if hit {
			logger.Debug("cache hit", "path", path)
			return &types.ImageRecord{
				Path:        path,
				Fingerprint: fp,
				Size:        info.Size(),
				ModifiedAt:  info.ModTime(),
				TakenAt:     takenAt,
			}, nil
		}
	}

	img, err := registry.Load(path)
	if err != nil {
		return nil, err
	}

	fp, err := fingerprint.FromImage(img, opts.GridSize, opts.HashKind)
	if err != nil {
		return nil, err
	}

	rec := &types.ImageRecord{
		Path:        path,
		Fingerprint: fp,
		Size:        info.Size(),
		ModifiedAt:  info.ModTime(),
		TakenAt:     exifTakenAt(path),
	}

	if opts.Cache != nil {
		if err := opts.Cache.Store(*rec, opts.GridSize, opts.HashKind); err != nil {
			logger.Warn("cache store failed", "path", path, "error", err)
		}
	}

	return rec, nil
}
