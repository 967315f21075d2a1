package sizecheck

import (
	"errors"
	"fmt"

	"github.com/docker/go-units"
)

// ErrSizeLimitExceeded matches every *SizeLimitExceededError via errors.Is.
var ErrSizeLimitExceeded = errors.New("sizecheck: package size limit exceeded")

// SizeLimitExceededError reports a grand total that is strictly greater than
// the configured threshold.
type SizeLimitExceededError struct {
	Total     int64
	Threshold int64
}

func (e *SizeLimitExceededError) Error() string {
	return fmt.Sprintf("sizecheck: package size %d bytes exceeds limit of %d bytes (%s over)",
		e.Total, e.Threshold, HumanSize(e.Total-e.Threshold))
}

// Is lets errors.Is(err, ErrSizeLimitExceeded) succeed.
func (e *SizeLimitExceededError) Is(target error) bool {
	return target == ErrSizeLimitExceeded
}

// DirSize is the measured subtotal of one tracked directory.
type DirSize struct {
	Path  string
	Files int
	Bytes int64
}

// FileSize is a single watched file found while measuring.
type FileSize struct {
	Path  string
	Bytes int64
}

// Report is the outcome of one measurement pass. Dirs keeps the order in
// which the tracked directories were walked.
type Report struct {
	Root      string
	Threshold int64
	Dirs      []DirSize
	Watched   []FileSize
	Total     int64
}

// Exceeded reports whether the total is strictly greater than the threshold.
func (r Report) Exceeded() bool {
	return r.Total > r.Threshold
}

// Headroom returns how many bytes remain before the threshold. It is negative
// once the threshold has been exceeded.
func (r Report) Headroom() int64 {
	return r.Threshold - r.Total
}

// Dir returns the subtotal for a tracked directory path.
func (r Report) Dir(path string) (DirSize, bool) {
	for _, dir := range r.Dirs {
		if dir.Path == path {
			return dir, true
		}
	}
	return DirSize{}, false
}

// Err converts an exceeded report into its domain error.
func (r Report) Err() error {
	if !r.Exceeded() {
		return nil
	}
	return &SizeLimitExceededError{Total: r.Total, Threshold: r.Threshold}
}

// HumanSize renders a byte count with decimal units (kB, MB, ...).
func HumanSize(bytes int64) string {
	if bytes < 0 {
		return "-" + units.HumanSize(float64(-bytes))
	}
	return units.HumanSize(float64(bytes))
}
