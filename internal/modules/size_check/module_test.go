package size_check

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/sizegate/internal/artifact"
	"github.com/kingrea/sizegate/internal/config"
	"github.com/kingrea/sizegate/internal/logbook"
	"github.com/kingrea/sizegate/internal/module"
	"github.com/kingrea/sizegate/internal/sizecheck"
)

func newSizeCheckTestContext(t *testing.T, initialize bool) (*module.ModuleContext, *bytes.Buffer) {
	t.Helper()
	projectDir := t.TempDir()
	if initialize {
		if err := config.InitStateDir(projectDir); err != nil {
			t.Fatalf("init state dir: %v", err)
		}
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	var lb *logbook.Logbook
	if initialize {
		lb, err = logbook.New(cfg.LogbookPath())
		if err != nil {
			t.Fatalf("logbook: %v", err)
		}
	}
	var out bytes.Buffer
	ctx := module.NewContext(cfg, lb).WithOutput(&out)
	return ctx, &out
}

func seedFile(t *testing.T, ctx *module.ModuleContext, rel string, size int) {
	t.Helper()
	path := filepath.Join(ctx.Config.ProjectDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0}, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestRunCompletesUnderBudget(t *testing.T) {
	ctx, out := newSizeCheckTestContext(t, true)
	seedFile(t, ctx, "dist/bin/a", 1000)
	seedFile(t, ctx, "dist/bin/b", 2000)
	seedFile(t, ctx, "dist/browser/c", 3000)
	seedFile(t, ctx, "dist/native/d", 4000)

	result, err := New().Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != module.StatusCompleted {
		t.Fatalf("unexpected status: %+v", result)
	}
	if !strings.Contains(out.String(), "Total NPM package file size: 10000 bytes") {
		t.Fatalf("missing total line:\n%s", out.String())
	}
	lines, _ := ctx.Logbook.Tail(1)
	if len(lines) != 1 || !strings.Contains(lines[0], "total=10000") || !strings.Contains(lines[0], ctx.RunID) {
		t.Fatalf("unexpected logbook tail: %v", lines)
	}
}

func TestRunFailsOverBudget(t *testing.T) {
	ctx, _ := newSizeCheckTestContext(t, false)
	seedFile(t, ctx, "dist/common/index.js", 11)

	result, err := New(WithThreshold(10)).Run(ctx)
	if !errors.Is(err, sizecheck.ErrSizeLimitExceeded) {
		t.Fatalf("expected size limit error, got %v", err)
	}
	if result.Status != module.StatusFailed || !strings.Contains(result.Message, "exceeds size limit") {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(filepath.Join(ctx.Config.ProjectDir, config.StateDir)); !os.IsNotExist(err) {
		t.Fatalf("run on an uninitialized project must not write state, stat err = %v", err)
	}
}

func TestRunWritesReportWhenEnabled(t *testing.T) {
	ctx, _ := newSizeCheckTestContext(t, true)
	ctx = ctx.WithReport(true)
	seedFile(t, ctx, "dist/bin/"+sizecheck.WatchedArtifact, 500)

	if _, err := New().Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	result, err := ctx.Artifacts.Check(artifact.SizeReportDoc(moduleID))
	if err != nil {
		t.Fatalf("check report: %v", err)
	}
	if result.State != artifact.StateReady || result.Metadata.RunID != ctx.RunID {
		t.Fatalf("unexpected report state: %+v", result)
	}
	if result.Metadata.Notes["total"] != "500" {
		t.Fatalf("unexpected notes: %+v", result.Metadata.Notes)
	}
	lines, _ := ctx.Logbook.Tail(2)
	if len(lines) != 2 || !strings.Contains(lines[0], "watched ") || !strings.HasSuffix(lines[0], sizecheck.WatchedArtifact+" bytes=500") {
		t.Fatalf("expected watched artifact in logbook, got %v", lines)
	}
}

func TestConcludeMapsOutcomes(t *testing.T) {
	ctx, _ := newSizeCheckTestContext(t, true)
	info := New().Info()
	within := sizecheck.Report{Root: ctx.Config.ProjectDir, Threshold: 100, Total: 100}
	over := sizecheck.Report{Root: ctx.Config.ProjectDir, Threshold: 100, Total: 101}
	walkErr := errors.New("permission denied")

	tests := []struct {
		name     string
		report   sizecheck.Report
		err      error
		status   module.Status
		wantErr  error
		logEntry string
	}{
		{name: "within", report: within, status: module.StatusCompleted, logEntry: "INFO  crt-size-check run=" + ctx.RunID + " total=100 threshold=100 ok"},
		{name: "exceeded", report: over, err: over.Err(), status: module.StatusFailed, wantErr: sizecheck.ErrSizeLimitExceeded, logEntry: "total=101 threshold=100 exceeded"},
		{name: "walk error", err: walkErr, status: module.StatusFailed, wantErr: walkErr, logEntry: "measure failed: permission denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Conclude(ctx, info, tt.report, tt.err)
			if result.Status != tt.status {
				t.Fatalf("status = %s, want %s", result.Status, tt.status)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			lines, _ := ctx.Logbook.Tail(1)
			if len(lines) != 1 || !strings.Contains(lines[0], tt.logEntry) {
				t.Fatalf("logbook tail %v missing %q", lines, tt.logEntry)
			}
		})
	}
}

func TestRegisterAppliesMaxBytesOverride(t *testing.T) {
	reg := module.NewRegistry()
	Register(reg)
	mod, err := reg.Resolve(moduleID, module.Config{MaxBytesKey: "2MB"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := mod.(*Module).Threshold(); got != 2_000_000 {
		t.Fatalf("threshold = %d, want 2000000", got)
	}
	if _, err := reg.Resolve(moduleID, module.Config{"max_byte": 1}); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
	mod, err = reg.Resolve(moduleID, nil)
	if err != nil {
		t.Fatalf("resolve defaults: %v", err)
	}
	if got := mod.(*Module).Threshold(); got != sizecheck.DefaultThreshold {
		t.Fatalf("default threshold = %d", got)
	}
}

func TestParseMaxBytes(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		fail bool
	}{
		{in: 5000000, want: 5000000},
		{in: int64(7), want: 7},
		{in: float64(1024), want: 1024},
		{in: "123", want: 123},
		{in: "5MB", want: 5_000_000},
		{in: "5 mb", want: 5_000_000},
		{in: "5MiB", want: 5 * 1024 * 1024},
		{in: "5mib", want: 5 * 1024 * 1024},
		{in: "2Ki", want: 2048},
		{in: float64(1 << 63), fail: true},
		{in: "0", fail: true},
		{in: -3, fail: true},
		{in: 1.5, fail: true},
		{in: "lots", fail: true},
		{in: true, fail: true},
	}
	for _, tt := range tests {
		got, err := ParseMaxBytes(tt.in)
		if tt.fail {
			if err == nil {
				t.Fatalf("ParseMaxBytes(%v) expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseMaxBytes(%v) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if _, err := New().Run(&module.ModuleContext{}); err == nil {
		t.Fatalf("expected missing config to fail")
	}
}
