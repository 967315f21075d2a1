package sizecheck

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Option customizes an Auditor.
type Option func(*Auditor)

// WithThreshold overrides DefaultThreshold. Non-positive values are ignored.
func WithThreshold(bytes int64) Option {
	return func(a *Auditor) {
		if bytes > 0 {
			a.threshold = bytes
		}
	}
}

// WithTrackedDirs replaces the default directory list. An empty list is ignored.
func WithTrackedDirs(dirs ...TrackedDir) Option {
	return func(a *Auditor) {
		if len(dirs) == 0 {
			return
		}
		a.dirs = make([]TrackedDir, len(dirs))
		for i, dir := range dirs {
			a.dirs[i] = dir.Normalized()
		}
	}
}

// WithReporter installs a progress observer.
func WithReporter(r Reporter) Option {
	return func(a *Auditor) {
		if r != nil {
			a.reporter = r
		}
	}
}

// Auditor sums the tracked directories of a project and compares the total
// against a threshold. It is not safe for concurrent use with a shared
// stateful Reporter.
type Auditor struct {
	dirs      []TrackedDir
	threshold int64
	reporter  Reporter
}

// New constructs an auditor with the default directories and threshold.
func New(opts ...Option) *Auditor {
	a := &Auditor{
		dirs:      DefaultTrackedDirs(),
		threshold: DefaultThreshold,
		reporter:  NopReporter{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Threshold returns the byte budget.
func (a *Auditor) Threshold() int64 {
	return a.threshold
}

// TrackedDirs returns a copy of the directories in walk order.
func (a *Auditor) TrackedDirs() []TrackedDir {
	return append([]TrackedDir{}, a.dirs...)
}

// Audit measures root and fails with *SizeLimitExceededError when the total
// is strictly greater than the threshold. The report is returned either way.
func (a *Auditor) Audit(root string) (Report, error) {
	report, err := a.Measure(root)
	if err != nil {
		return report, err
	}
	return report, report.Err()
}

// Measure walks every tracked directory in order and returns the subtotals
// and grand total without applying the threshold.
func (a *Auditor) Measure(root string) (Report, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return Report{}, fmt.Errorf("sizecheck: project root is required")
	}
	root = filepath.Clean(root)
	report := Report{Root: root, Threshold: a.threshold}
	for _, dir := range a.dirs {
		measured, watched, err := measureDir(root, dir, a.reporter)
		if err != nil {
			return report, err
		}
		a.reporter.DirectoryMeasured(measured)
		report.Dirs = append(report.Dirs, measured)
		report.Watched = append(report.Watched, watched...)
		report.Total += measured.Bytes
	}
	a.reporter.TotalMeasured(report.Total)
	return report, nil
}

func measureDir(root string, dir TrackedDir, reporter Reporter) (DirSize, []FileSize, error) {
	result := DirSize{Path: dir.Path}
	base := filepath.Join(root, filepath.FromSlash(dir.Path))
	walkRoot, ok, err := resolveWalkRoot(base)
	if err != nil || !ok {
		return result, nil, err
	}
	var watched []FileSize
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("sizecheck: walk %s: %w", path, walkErr)
		}
		if d.IsDir() {
			return nil
		}
		size, counted, err := entrySize(path, d)
		if err != nil {
			return err
		}
		if !counted {
			return nil
		}
		if dir.watches(d.Name()) {
			file := FileSize{Path: reportedPath(base, walkRoot, path), Bytes: size}
			watched = append(watched, file)
			reporter.WatchedFile(file)
		}
		result.Files++
		result.Bytes += size
		return nil
	})
	return result, watched, err
}

// reportedPath keeps reported files under the tracked directory even when the
// walk followed a symlinked root to its target.
func reportedPath(base, walkRoot, path string) string {
	if walkRoot == base {
		return path
	}
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(base, rel)
}

// resolveWalkRoot reports whether base is a directory worth walking. Missing
// directories and non-directories contribute nothing. A symlinked tracked
// directory is walked through its target.
func resolveWalkRoot(base string) (string, bool, error) {
	info, err := os.Stat(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sizecheck: stat %s: %w", base, err)
	}
	if !info.IsDir() {
		return "", false, nil
	}
	linfo, err := os.Lstat(base)
	if err != nil {
		return "", false, fmt.Errorf("sizecheck: lstat %s: %w", base, err)
	}
	if linfo.Mode()&fs.ModeSymlink == 0 {
		return base, true, nil
	}
	resolved, err := filepath.EvalSymlinks(base)
	if err != nil {
		return "", false, fmt.Errorf("sizecheck: resolve %s: %w", base, err)
	}
	return resolved, true, nil
}

// entrySize returns the byte size of a non-directory entry. Links to files
// count their target; links to directories are skipped and never descended.
func entrySize(path string, d fs.DirEntry) (int64, bool, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			return 0, false, fmt.Errorf("sizecheck: stat %s: %w", path, err)
		}
		if info.IsDir() {
			return 0, false, nil
		}
		return info.Size(), true, nil
	}
	info, err := d.Info()
	if err != nil {
		return 0, false, fmt.Errorf("sizecheck: stat %s: %w", path, err)
	}
	return info.Size(), true, nil
}
