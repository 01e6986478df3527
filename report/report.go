// Package report turns duplicate clusters into the deletion plan shown to
// the user. The plan is pure data so any front end (terminal prompt, auto
// mode, a future GUI) can confirm and drive deletion without touching the
// clustering code.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"imagedupes/types"
)

// Plan is the structured deletion plan: one group per duplicate cluster,
// in cluster order, each listing its duplicates in attachment order.
type Plan struct {
	Groups          []Group
	FilesFound      int
	FilesProcessed  int
	DecodeFailures  int
	TotalDuplicates int
}

// Group describes one cluster: the file kept and the files proposed for
// deletion.
type Group struct {
	OriginalPath string
	OriginalSize int64
	TakenAt      time.Time
	Duplicates   []Entry
}

// Entry is one duplicate proposed for deletion.
type Entry struct {
	Path     string
	Size     int64
	Distance int
}

// Build assembles the plan from the clusterer's output. Group order and
// duplicate order mirror the cluster output exactly, which in turn mirrors
// the scan enumeration order.
func Build(clusters []types.DuplicateCluster, scan *types.ScanResult) *Plan {
	plan := &Plan{}
	if scan != nil {
		plan.FilesFound = scan.FilesFound
		plan.FilesProcessed = len(scan.Records)
		plan.DecodeFailures = len(scan.Failures)
	}

	for _, c := range clusters {
		group := Group{
			OriginalPath: c.Original.Path,
			OriginalSize: c.Original.Size,
			TakenAt:      c.Original.TakenAt,
		}
		for _, d := range c.Duplicates {
			group.Duplicates = append(group.Duplicates, Entry{
				Path:     d.Record.Path,
				Size:     d.Record.Size,
				Distance: d.Distance,
			})
		}
		plan.TotalDuplicates += len(group.Duplicates)
		plan.Groups = append(plan.Groups, group)
	}

	return plan
}

// Empty reports whether the plan proposes no deletions.
func (p *Plan) Empty() bool {
	return p.TotalDuplicates == 0
}

// PathsToDelete returns every duplicate path in plan order. Originals and
// singletons are never included.
func (p *Plan) PathsToDelete() []string {
	var paths []string
	for _, g := range p.Groups {
		for _, d := range g.Duplicates {
			paths = append(paths, d.Path)
		}
	}
	return paths
}

// DuplicateBytes returns the total size of all files proposed for deletion.
func (p *Plan) DuplicateBytes() int64 {
	var total int64
	for _, g := range p.Groups {
		for _, d := range g.Duplicates {
			total += d.Size
		}
	}
	return total
}

// Render writes the human-reviewable plan.
func Render(w io.Writer, p *Plan) {
	if p.DecodeFailures > 0 {
		fmt.Fprintf(w, "Skipped %d unreadable files.\n", p.DecodeFailures)
	}

	if p.Empty() {
		fmt.Fprintln(w, "\nNo duplicate images found!")
		return
	}

	fmt.Fprintf(w, "\nFound %d duplicate images across %d groups.\n", p.TotalDuplicates, len(p.Groups))
	fmt.Fprintln(w, "\nDuplicate groups:")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, g := range p.Groups {
		fmt.Fprintf(w, "\nOriginal: %s\n", g.OriginalPath)
		fmt.Fprintf(w, "  Size: %d bytes\n", g.OriginalSize)
		if !g.TakenAt.IsZero() {
			fmt.Fprintf(w, "  Taken: %s\n", g.TakenAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(w, "  Duplicates (%d):\n", len(g.Duplicates))
		for _, d := range g.Duplicates {
			fmt.Fprintf(w, "    - %s\n", d.Path)
			fmt.Fprintf(w, "      Size: %d bytes\n", d.Size)
			fmt.Fprintf(w, "      Similarity distance: %d\n", d.Distance)
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
}
