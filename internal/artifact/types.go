// Package artifact defines the files the size checks leave behind for later
// inspection. Each artifact has a stable identifier, a kind, and a resolver
// that maps it to a path inside the project's .sizegate/reports directory.

package artifact

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Kind captures the storage shape and serialization format for an artifact.
type Kind string

const (
	// KindDocument represents a markdown document with YAML frontmatter.
	KindDocument Kind = "document"
)

// PathResolver returns the fully-qualified path to an artifact under a store root.
type PathResolver func(root string) string

// ArtifactRef declares a stable identifier and metadata for an artifact.
type ArtifactRef struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	path        PathResolver
}

// Path resolves the artifact path for the provided store root.
func (r ArtifactRef) Path(root string) string {
	if strings.TrimSpace(root) == "" || r.path == nil {
		return ""
	}
	return filepath.Clean(r.path(root))
}

// Validate ensures the reference is well-formed.
func (r ArtifactRef) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("artifact: id is required")
	}
	if r.Kind == "" {
		return fmt.Errorf("artifact: kind is required for %s", r.ID)
	}
	if r.path == nil {
		return fmt.Errorf("artifact: path resolver missing for %s", r.ID)
	}
	return nil
}

// SizeReportDoc is the markdown report a size check writes after each run.
func SizeReportDoc(checkID string) ArtifactRef {
	id := "size-report/" + checkID
	return ArtifactRef{
		ID:          id,
		Name:        "Size Report",
		Description: "Per-directory byte breakdown of the last " + checkID + " run.",
		Kind:        KindDocument,
		path: func(root string) string {
			return filepath.Join(root, checkID+".md")
		},
	}
}

// Metadata captures provenance stored inside artifact frontmatter.
type Metadata struct {
	ArtifactID string
	CheckID    string
	Version    string
	RunID      string
	CreatedAt  time.Time
	Notes      map[string]string
}

// WithDefaults ensures metadata carries the artifact ID and timestamps.
func (m Metadata) WithDefaults(ref ArtifactRef, now time.Time) Metadata {
	clone := m
	if clone.ArtifactID == "" {
		clone.ArtifactID = ref.ID
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now.UTC()
	} else {
		clone.CreatedAt = clone.CreatedAt.UTC()
	}
	return clone
}

// ValidateFor ensures metadata matches the artifact contract.
func (m Metadata) ValidateFor(ref ArtifactRef) error {
	if m.ArtifactID != ref.ID {
		return fmt.Errorf("artifact: metadata id %s does not match ref %s", m.ArtifactID, ref.ID)
	}
	if m.CheckID == "" {
		return fmt.Errorf("artifact: check id is required for %s", ref.ID)
	}
	if m.Version == "" {
		return fmt.Errorf("artifact: version is required for %s", ref.ID)
	}
	return nil
}

// State captures the readiness of an artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// CheckResult captures Store.Check results.
type CheckResult struct {
	Ref      ArtifactRef
	Path     string
	State    State
	Metadata *Metadata
	Err      error
}
