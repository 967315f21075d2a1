package module

import (
	"fmt"
	"strings"
)

// Info describes an action's identity and intent.
type Info struct {
	ID          string
	Name        string
	Description string
	Version     string
}

// Validate ensures the info block is well-formed.
func (i Info) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("module: id is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("module: name is required for %s", i.ID)
	}
	if strings.TrimSpace(i.Version) == "" {
		return fmt.Errorf("module: version is required for %s", i.ID)
	}
	return nil
}

// Label returns the human-facing name, falling back to the ID.
func (i Info) Label() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return strings.TrimSpace(i.ID)
}

// Result captures the outcome of a module execution.
type Result struct {
	Status  Status
	Message string
}

// Status enumerates module run outcomes.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Module is implemented by every build action the runner can execute.
type Module interface {
	Info() Info
	Run(ctx *ModuleContext) (Result, error)
}
