package types

import (
	"time"

	"imagedupes/fingerprint"
)

// ImageRecord holds everything the clusterer and report need to know about
// one successfully fingerprinted file. Records are created during extraction
// and never mutated.
type ImageRecord struct {
	Path        string
	Fingerprint fingerprint.Fingerprint
	Size        int64
	ModifiedAt  time.Time
	TakenAt     time.Time // EXIF capture time, zero when unavailable
}

// DuplicatePair is one near-duplicate of a cluster's original, with its
// fingerprint distance to that original.
type DuplicatePair struct {
	Record   ImageRecord
	Distance int
}

// DuplicateCluster is one designated original plus the records that were
// attached to it. Every record belongs to at most one cluster, and the
// original of a cluster never appears as a duplicate elsewhere.
type DuplicateCluster struct {
	Original   ImageRecord
	Duplicates []DuplicatePair
}

// ScanFailure records a file that was enumerated but could not be
// fingerprinted. Failures are warnings, not scan errors.
type ScanFailure struct {
	Path string
	Err  error
}

// ScanResult is the output of a folder scan: the fingerprinted records in
// enumeration order plus the files that failed to decode.
type ScanResult struct {
	Records    []ImageRecord
	FilesFound int
	Failures   []ScanFailure
}
