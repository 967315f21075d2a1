package module

import (
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/kingrea/sizegate/internal/artifact"
	"github.com/kingrea/sizegate/internal/config"
	"github.com/kingrea/sizegate/internal/logbook"
)

// ModuleContext carries shared runtime dependencies into every module.
type ModuleContext struct {
	Config    *config.Config
	Logbook   *logbook.Logbook
	Artifacts *artifact.Store
	// Out receives human-readable progress lines.
	Out io.Writer
	// RunID tags log entries and report artifacts for one invocation.
	RunID string
	// WriteReport asks modules to persist a report artifact.
	WriteReport bool
}

// NewContext builds a ModuleContext with a report store rooted in the
// project's state directory and a fresh run ID. A nil logbook is allowed.
func NewContext(cfg *config.Config, lb *logbook.Logbook) *ModuleContext {
	ctx := &ModuleContext{
		Config:  cfg,
		Logbook: lb,
		Out:     os.Stdout,
		RunID:   uuid.NewString(),
	}
	if cfg != nil {
		ctx.Artifacts = artifact.NewStore(cfg.ReportsDir())
		ctx.WriteReport = cfg.ReportEnabled()
	}
	return ctx
}

// WithOutput redirects progress output.
func (ctx *ModuleContext) WithOutput(w io.Writer) *ModuleContext {
	clone := *ctx
	if w == nil {
		w = io.Discard
	}
	clone.Out = w
	return &clone
}

// WithReport toggles report artifact emission.
func (ctx *ModuleContext) WithReport(enabled bool) *ModuleContext {
	clone := *ctx
	clone.WriteReport = enabled
	return &clone
}
