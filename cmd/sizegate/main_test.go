package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kingrea/sizegate/internal/module"
	"github.com/kingrea/sizegate/internal/modules/size_check"
	"github.com/kingrea/sizegate/internal/sizecheck"
)

func TestKeyValueFlag(t *testing.T) {
	kv := keyValueFlag{}
	if err := kv.Set("max_bytes=5MB"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("label=a=b"); err != nil {
		t.Fatalf("set with '=' in value: %v", err)
	}
	if kv["label"] != "a=b" {
		t.Fatalf("value split incorrectly: %q", kv["label"])
	}
	for _, bad := range []string{"novalue", "=5"} {
		if err := kv.Set(bad); err == nil {
			t.Fatalf("expected %q to fail", bad)
		}
	}
}

func TestBuildModuleConfigMergesFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check.yaml")
	if err := os.WriteFile(path, []byte("max_bytes: 100\nother: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := buildModuleConfig(path, keyValueFlag{"max_bytes": "200"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := module.Config{"max_bytes": "200", "other": "x"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg, err := buildModuleConfig("", nil); err != nil || cfg != nil {
		t.Fatalf("expected nil config without inputs, got %v %v", cfg, err)
	}
	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := buildModuleConfig(empty, nil); err == nil {
		t.Fatalf("expected empty file to fail")
	}
}

func TestDescribeCheckListsBudgetAndDirectories(t *testing.T) {
	got := describeCheck(size_check.New(), true)
	for _, want := range []string{
		"* crt-size-check",
		"NPM Package Size Check v1.0.0",
		"budget 5MB (5000000 bytes): dist/bin, dist/browser, dist/common, dist/native\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("describeCheck missing %q:\n%s", want, got)
		}
	}

	custom := size_check.NewCheck(module.Info{ID: "wasm-size", Name: "WASM", Version: "0.1.0"},
		size_check.WithThreshold(2048),
		size_check.WithTrackedDirs(sizecheck.TrackedDir{Path: "dist/wasm"}),
	)
	got = describeCheck(custom, false)
	if !strings.HasPrefix(got, "  wasm-size") || !strings.Contains(got, "(2048 bytes): dist/wasm\n") {
		t.Fatalf("unexpected custom entry:\n%s", got)
	}
}
