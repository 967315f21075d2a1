package sizecheck

import (
	"fmt"
	"path"
	"strings"
)

const (
	// DefaultThreshold is the maximum permitted package size in bytes.
	DefaultThreshold int64 = 5_000_000

	// WatchedArtifact is the native addon whose size is reported on its own.
	WatchedArtifact = "aws-crt-nodejs.node"
)

// TrackedDir is one packaging output directory, relative to the project root
// and written with forward slashes. Files whose base name appears in Watch are
// reported individually in addition to being counted.
type TrackedDir struct {
	Path  string   `yaml:"path"`
	Watch []string `yaml:"watch,omitempty"`
}

// DefaultTrackedDirs returns the packaging outputs in walk order.
func DefaultTrackedDirs() []TrackedDir {
	return []TrackedDir{
		{Path: "dist/bin", Watch: []string{WatchedArtifact}},
		{Path: "dist/browser"},
		{Path: "dist/common"},
		{Path: "dist/native"},
	}
}

// Normalized trims the entry and cleans its path.
func (d TrackedDir) Normalized() TrackedDir {
	clone := TrackedDir{Path: strings.TrimSpace(d.Path)}
	if clone.Path != "" {
		clone.Path = path.Clean(strings.ReplaceAll(clone.Path, `\`, "/"))
	}
	for _, name := range d.Watch {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			clone.Watch = append(clone.Watch, trimmed)
		}
	}
	return clone
}

// Validate rejects empty, absolute, and root-escaping paths.
func (d TrackedDir) Validate() error {
	n := d.Normalized()
	switch {
	case n.Path == "" || n.Path == ".":
		return fmt.Errorf("path is required")
	case path.IsAbs(n.Path) || strings.Contains(n.Path, ":"):
		return fmt.Errorf("path %s must be relative to the project root", n.Path)
	case n.Path == ".." || strings.HasPrefix(n.Path, "../"):
		return fmt.Errorf("path %s escapes the project root", n.Path)
	}
	for _, name := range n.Watch {
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("watch entry %s must be a file name", name)
		}
	}
	return nil
}

func (d TrackedDir) watches(name string) bool {
	for _, w := range d.Watch {
		if w == name {
			return true
		}
	}
	return false
}

// ValidateTrackedDirs checks every entry and rejects duplicate paths.
func ValidateTrackedDirs(dirs []TrackedDir) error {
	if len(dirs) == 0 {
		return fmt.Errorf("at least one directory is required")
	}
	seen := make(map[string]struct{}, len(dirs))
	for idx, dir := range dirs {
		if err := dir.Validate(); err != nil {
			return fmt.Errorf("directories[%d]: %w", idx, err)
		}
		key := dir.Normalized().Path
		if _, ok := seen[key]; ok {
			return fmt.Errorf("directories[%d]: duplicate path %s", idx, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
