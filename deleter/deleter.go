// Package deleter removes the files of a finalized deletion plan. Deletion
// is strictly post-hoc: the plan is already computed, and a failure on one
// file never stops the rest.
package deleter

import (
	"fmt"
	"log/slog"
	"os"
)

// Result is the outcome for a single path.
type Result struct {
	Path string
	Size int64
	Err  error
}

// Summary aggregates a deletion run.
type Summary struct {
	Results    []Result
	Deleted    int
	BytesFreed int64
}

// DeleteFiles removes each path in order. Every file is stat'ed first so
// the freed size is known, then removed; per-file errors (already gone,
// permission denied) are recorded and the loop continues.
func DeleteFiles(paths []string, logger *slog.Logger) *Summary {
	if logger == nil {
		logger = slog.Default()
	}

	summary := &Summary{}
	for _, path := range paths {
		result := Result{Path: path}

		info, err := os.Stat(path)
		if err != nil {
			result.Err = fmt.Errorf("stat: %w", err)
			logger.Warn("cannot delete file", "path", path, "error", err)
			summary.Results = append(summary.Results, result)
			continue
		}
		result.Size = info.Size()

		if err := os.Remove(path); err != nil {
			result.Err = fmt.Errorf("remove: %w", err)
			logger.Warn("cannot delete file", "path", path, "error", err)
			summary.Results = append(summary.Results, result)
			continue
		}

		summary.Deleted++
		summary.BytesFreed += result.Size
		logger.Debug("deleted", "path", path, "bytes", result.Size)
		summary.Results = append(summary.Results, result)
	}

	return summary
}

// Failures returns the results that carry an error.
func (s *Summary) Failures() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
