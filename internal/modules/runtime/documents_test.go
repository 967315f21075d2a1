package runtime

import (
	"strings"
	"testing"

	"github.com/kingrea/sizegate/internal/artifact"
	"github.com/kingrea/sizegate/internal/config"
	"github.com/kingrea/sizegate/internal/module"
	"github.com/kingrea/sizegate/internal/sizecheck"
)

func sampleReport() sizecheck.Report {
	return sizecheck.Report{
		Root:      "/project",
		Threshold: 5000,
		Dirs: []sizecheck.DirSize{
			{Path: "dist/bin", Files: 2, Bytes: 3000},
			{Path: "dist/native", Files: 1, Bytes: 4000},
		},
		Watched: []sizecheck.FileSize{{Path: "/project/dist/bin/aws-crt-nodejs.node", Bytes: 500}},
		Total:   7000,
	}
}

func TestRenderSizeReport(t *testing.T) {
	body := string(RenderSizeReport("NPM Package Size Check", sampleReport()))
	for _, want := range []string{
		"# Size report: NPM Package Size Check",
		"| dist/bin | 2 | 3000 | 3kB |",
		"| **Total** | 3 | 7000 | 7kB |",
		"Status: **exceeded** by 2000 bytes",
		"`/project/dist/bin/aws-crt-nodejs.node`: 500 bytes",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("report missing %q:\n%s", want, body)
		}
	}
}

func TestValidateContext(t *testing.T) {
	if err := ValidateContext("x", nil); err == nil {
		t.Fatalf("nil context should fail")
	}
	ctx := &module.ModuleContext{Config: &config.Config{ProjectDir: "/p"}, WriteReport: true}
	if err := ValidateContext("x", ctx); err == nil || !strings.Contains(err.Error(), "artifact store") {
		t.Fatalf("expected missing store error, got %v", err)
	}
	ctx.WriteReport = false
	if err := ValidateContext("x", ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteSizeReport(t *testing.T) {
	dir := t.TempDir()
	ctx := &module.ModuleContext{
		Config:    &config.Config{ProjectDir: dir},
		Artifacts: artifact.NewStore(dir),
		RunID:     "run-42",
	}
	info := module.Info{ID: "crt-size-check", Name: "NPM Package Size Check", Version: "1.0.0"}
	if err := WriteSizeReport(ctx, info, sampleReport(), WithNote("root", "/project")); err != nil {
		t.Fatalf("write report: %v", err)
	}
	meta, body, err := ctx.Artifacts.Read(artifact.SizeReportDoc(info.ID))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if meta.RunID != "run-42" || meta.Notes["exceeded"] != "true" || meta.Notes["root"] != "/project" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if !strings.Contains(string(body), "dist/native") {
		t.Fatalf("unexpected body: %s", body)
	}
}
