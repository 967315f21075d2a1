package size_check

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/docker/go-units"

	"github.com/kingrea/sizegate/internal/config"
	"github.com/kingrea/sizegate/internal/module"
	"github.com/kingrea/sizegate/internal/modules/runtime"
	"github.com/kingrea/sizegate/internal/sizecheck"
)

const (
	moduleID      = config.DefaultCheckID
	moduleVersion = "1.0.0"

	// MaxBytesKey overrides the byte budget from -set or -config-file.
	MaxBytesKey = "max_bytes"
)

// Option customizes the size check module.
type Option func(*Module)

// Module runs a sizecheck.Auditor against the project directory.
type Module struct {
	*module.Base
	dirs      []sizecheck.TrackedDir
	threshold int64
	label     string
}

// Register installs the built-in crt-size-check factory.
func Register(reg *module.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(moduleID, func(cfg module.Config) (module.Module, error) {
		mod := New()
		if err := mod.ApplyConfig(cfg); err != nil {
			return nil, err
		}
		return mod, nil
	})
}

// New constructs the built-in check with the default directories and budget.
func New(opts ...Option) *Module {
	info := module.Info{
		ID:          moduleID,
		Name:        "NPM Package Size Check",
		Description: "Fails the build when the packaged dist/ outputs exceed the size budget.",
		Version:     moduleVersion,
	}
	return NewCheck(info, opts...)
}

// NewCheck constructs a size check with custom identity. Without options it
// audits the default directories against sizecheck.DefaultThreshold.
func NewCheck(info module.Info, opts ...Option) *Module {
	base := module.NewBase(info)
	mod := &Module{
		Base:      &base,
		dirs:      sizecheck.DefaultTrackedDirs(),
		threshold: sizecheck.DefaultThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(mod)
		}
	}
	return mod
}

// WithThreshold overrides the byte budget. Non-positive values are ignored.
func WithThreshold(bytes int64) Option {
	return func(m *Module) {
		if bytes > 0 {
			m.threshold = bytes
		}
	}
}

// WithTrackedDirs replaces the measured directories.
func WithTrackedDirs(dirs ...sizecheck.TrackedDir) Option {
	return func(m *Module) {
		if len(dirs) > 0 {
			m.dirs = append([]sizecheck.TrackedDir{}, dirs...)
		}
	}
}

// WithTotalLabel names the package in the final total line.
func WithTotalLabel(label string) Option {
	return func(m *Module) {
		m.label = strings.TrimSpace(label)
	}
}

// Threshold returns the configured byte budget.
func (m *Module) Threshold() int64 {
	return m.threshold
}

// ApplyConfig reads runtime overrides. Unknown keys are rejected so typos in
// -set flags do not silently fall back to defaults.
func (m *Module) ApplyConfig(cfg module.Config) error {
	for key, value := range cfg {
		switch strings.TrimSpace(key) {
		case MaxBytesKey:
			bytes, err := ParseMaxBytes(value)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", m.Info().ID, MaxBytesKey, err)
			}
			m.threshold = bytes
		default:
			return fmt.Errorf("%s: unknown config key %q", m.Info().ID, key)
		}
	}
	return nil
}

// Auditor builds an auditor for this check that reports to reporter.
func (m *Module) Auditor(reporter sizecheck.Reporter) *sizecheck.Auditor {
	return sizecheck.New(
		sizecheck.WithTrackedDirs(m.dirs...),
		sizecheck.WithThreshold(m.threshold),
		sizecheck.WithReporter(reporter),
	)
}

// Reporter prints the console progress lines to w and records watched file
// sizes in the logbook.
func (m *Module) Reporter(ctx *module.ModuleContext, w io.Writer) sizecheck.Reporter {
	if w == nil {
		w = io.Discard
	}
	return sizecheck.MultiReporter(
		sizecheck.NewConsoleReporter(w, m.label),
		watchLog{ctx: ctx, checkID: m.Info().ID},
	)
}

// Run audits the project directory and fails when the budget is exceeded.
func (m *Module) Run(ctx *module.ModuleContext) (module.Result, error) {
	info := m.Info()
	if err := runtime.ValidateContext(info.ID, ctx); err != nil {
		return module.Result{Status: module.StatusFailed}, err
	}
	report, err := m.Auditor(m.Reporter(ctx, ctx.Out)).Audit(ctx.Config.ProjectDir)
	return Conclude(ctx, info, report, err)
}

// Conclude turns an audit outcome into a module result. It logs the outcome,
// writes the report artifact when requested, and returns the size limit error
// unwrapped so callers can match it with errors.Is.
func Conclude(ctx *module.ModuleContext, info module.Info, report sizecheck.Report, err error) (module.Result, error) {
	if err != nil && !errors.Is(err, sizecheck.ErrSizeLimitExceeded) {
		ctx.Logbook.Error("%s run=%s measure failed: %v", info.ID, ctx.RunID, err)
		return module.Result{Status: module.StatusFailed}, fmt.Errorf("%s: %w", info.ID, err)
	}
	if ctx.WriteReport {
		if werr := runtime.WriteSizeReport(ctx, info, report, runtime.WithNote("root", report.Root)); werr != nil {
			ctx.Logbook.Error("%s run=%s report failed: %v", info.ID, ctx.RunID, werr)
			return module.Result{Status: module.StatusFailed}, werr
		}
	}
	if err != nil {
		ctx.Logbook.Error("%s run=%s total=%d threshold=%d exceeded", info.ID, ctx.RunID, report.Total, report.Threshold)
		return module.Result{
			Status:  module.StatusFailed,
			Message: fmt.Sprintf("%s exceeds size limit by %s", info.Label(), sizecheck.HumanSize(-report.Headroom())),
		}, err
	}
	ctx.Logbook.Info("%s run=%s total=%d threshold=%d ok", info.ID, ctx.RunID, report.Total, report.Threshold)
	return module.Result{
		Status: module.StatusCompleted,
		Message: fmt.Sprintf("%s: %s of %s used (%s headroom)", info.Label(),
			sizecheck.HumanSize(report.Total), sizecheck.HumanSize(report.Threshold), sizecheck.HumanSize(report.Headroom())),
	}, nil
}

type watchLog struct {
	ctx     *module.ModuleContext
	checkID string
}

func (w watchLog) WatchedFile(file sizecheck.FileSize) {
	if w.ctx == nil {
		return
	}
	w.ctx.Logbook.Info("%s run=%s watched %s bytes=%d", w.checkID, w.ctx.RunID, file.Path, file.Bytes)
}

func (watchLog) DirectoryMeasured(sizecheck.DirSize) {}
func (watchLog) TotalMeasured(int64)                 {}

// ParseMaxBytes accepts integer byte counts or human sizes such as "5MB"
// (decimal) or "5MiB" (binary).
func ParseMaxBytes(value any) (int64, error) {
	var bytes int64
	switch v := value.(type) {
	case int:
		bytes = int64(v)
	case int64:
		bytes = v
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%d is out of range", v)
		}
		bytes = int64(v)
	case float64:
		if v != math.Trunc(v) || v >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is not a whole byte count", v)
		}
		bytes = int64(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			bytes = parsed
			break
		}
		parse := units.FromHumanSize
		if isBinarySize(trimmed) {
			parse = units.RAMInBytes
			if strings.HasSuffix(strings.ToLower(trimmed), "i") {
				trimmed += "B"
			}
		}
		parsed, err := parse(trimmed)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", v, err)
		}
		bytes = parsed
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", value, value)
	}
	if bytes <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", bytes)
	}
	return bytes, nil
}

// isBinarySize reports whether a size uses a binary suffix such as "MiB" or
// "Ki". units.FromHumanSize would otherwise read "5MiB" as 5MB.
func isBinarySize(value string) bool {
	lower := strings.TrimSuffix(strings.ToLower(value), "b")
	return strings.HasSuffix(lower, "i")
}
