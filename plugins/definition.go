package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/sizegate/internal/modules/size_check"
	"github.com/kingrea/sizegate/internal/sizecheck"
)

// CheckDefinition describes a size check loaded from YAML.
//
// The struct mirrors the on-disk schema under .sizegate/checks/*.yaml. MaxBytes
// accepts either an integer byte count or a human size such as "2MB".
type CheckDefinition struct {
	ID          string                 `json:"id" yaml:"id"`
	Name        string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string                 `json:"version" yaml:"version"`
	Label       string                 `json:"label,omitempty" yaml:"label,omitempty"`
	MaxBytes    any                    `json:"max_bytes" yaml:"max_bytes"`
	Directories []sizecheck.TrackedDir `json:"directories" yaml:"directories"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def CheckDefinition) Normalized() CheckDefinition {
	clone := CheckDefinition{
		ID:          strings.TrimSpace(def.ID),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Version:     strings.TrimSpace(def.Version),
		Label:       strings.TrimSpace(def.Label),
		MaxBytes:    def.MaxBytes,
	}
	if len(def.Directories) > 0 {
		clone.Directories = make([]sizecheck.TrackedDir, len(def.Directories))
		for i, dir := range def.Directories {
			clone.Directories[i] = dir.Normalized()
		}
	}
	return clone
}

// Validate ensures the check definition is well-formed.
func (def CheckDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("plugin: id is required")
	}
	if strings.ContainsAny(normalized.ID, " \t/\\") {
		return fmt.Errorf("plugin %s: id must not contain whitespace or path separators", normalized.ID)
	}
	if normalized.Version == "" {
		return fmt.Errorf("plugin %s: version is required", normalized.ID)
	}
	if _, err := normalized.Threshold(); err != nil {
		return fmt.Errorf("plugin %s: %w", normalized.ID, err)
	}
	if err := sizecheck.ValidateTrackedDirs(normalized.Directories); err != nil {
		return fmt.Errorf("plugin %s: %w", normalized.ID, err)
	}
	return nil
}

// Threshold parses MaxBytes.
func (def CheckDefinition) Threshold() (int64, error) {
	if def.MaxBytes == nil {
		return 0, fmt.Errorf("max_bytes is required")
	}
	bytes, err := size_check.ParseMaxBytes(def.MaxBytes)
	if err != nil {
		return 0, fmt.Errorf("max_bytes: %w", err)
	}
	return bytes, nil
}

func defaultCheckName(def CheckDefinition) string {
	if def.Name != "" {
		return def.Name
	}
	return def.ID
}
