package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kingrea/sizegate/internal/artifact"
	"github.com/kingrea/sizegate/internal/config"
	"github.com/kingrea/sizegate/internal/logbook"
	"github.com/kingrea/sizegate/internal/module"
	"github.com/kingrea/sizegate/internal/sizecheck"
	"github.com/kingrea/sizegate/plugins"
)

// handleSubcommand runs init, list, log, report, or validate-check and
// reports whether args named one of them.
func handleSubcommand(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "init":
		runInit(args[1:])
	case "list":
		runList(args[1:])
	case "log":
		runLog(args[1:])
	case "report":
		runReport(args[1:])
	case "validate-check":
		runValidateCheck(args[1:])
	default:
		return false
	}
	return true
}

func projectArg(args []string) string {
	if len(args) > 1 {
		usage("expected at most one project directory, got %d arguments", len(args))
	}
	if len(args) == 1 {
		return args[0]
	}
	return ""
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	checkID := fs.String("check", "", "check to store as checks.default")
	_ = fs.Parse(args)
	project, err := config.ResolveProjectDir(projectArg(fs.Args()))
	if err != nil {
		die("%v", err)
	}
	if err := config.InitStateDir(project); err != nil {
		die("init %s: %v", config.StateDir, err)
	}
	fmt.Printf("Initialized %s in %s\n", config.StateDir, project)
	id := strings.TrimSpace(*checkID)
	if id == "" {
		return
	}
	cfg := loadConfig(project)
	if !buildRegistry(cfg).Has(id) {
		usage("unknown check %s; run `sizegate list` to see available checks", id)
	}
	if err := cfg.SetDefaultCheck(id); err != nil {
		die("set default check: %v", err)
	}
	fmt.Printf("Default check set to %s\n", id)
}

func runList(args []string) {
	cfg := loadConfig(projectArg(args))
	reg := buildRegistry(cfg)
	for _, id := range reg.IDs() {
		mod, err := reg.Resolve(id, nil)
		if err != nil {
			fmt.Printf("  %s (error: %v)\n", id, err)
			continue
		}
		fmt.Print(describeCheck(mod, id == cfg.DefaultCheck()))
	}
}

// describeCheck renders one entry of `sizegate list`; the default check is
// starred.
func describeCheck(mod module.Module, isDefault bool) string {
	marker := " "
	if isDefault {
		marker = "*"
	}
	info := mod.Info()
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-24s %s v%s\n", marker, info.ID, info.Name, info.Version)
	if info.Description != "" {
		fmt.Fprintf(&b, "  %s\n", info.Description)
	}
	if check, ok := mod.(sizeCheck); ok {
		auditor := check.Auditor(nil)
		var dirs []string
		for _, dir := range auditor.TrackedDirs() {
			dirs = append(dirs, dir.Path)
		}
		fmt.Fprintf(&b, "  budget %s (%d bytes): %s\n",
			sizecheck.HumanSize(auditor.Threshold()), auditor.Threshold(), strings.Join(dirs, ", "))
	}
	return b.String()
}

func runLog(args []string) {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	lines := fs.Int("n", 20, "number of entries to show")
	_ = fs.Parse(args)
	cfg := loadConfig(projectArg(fs.Args()))
	if !cfg.Initialized() {
		die("%s is not initialized; run `sizegate init` first", cfg.ProjectDir)
	}
	lb, err := logbook.New(cfg.LogbookPath())
	if err != nil {
		die("open logbook: %v", err)
	}
	entries, total := lb.Tail(*lines)
	for _, line := range entries {
		fmt.Println(line)
	}
	fmt.Fprintf(os.Stderr, "(%d of %d entries)\n", len(entries), total)
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	checkID := fs.String("check", "", "check whose last report to print")
	_ = fs.Parse(args)
	cfg := loadConfig(projectArg(fs.Args()))
	id := strings.TrimSpace(*checkID)
	if id == "" {
		id = cfg.DefaultCheck()
	}
	store := artifact.NewStore(cfg.ReportsDir())
	ref := artifact.SizeReportDoc(id)
	result, err := store.Check(ref)
	if err != nil {
		die("check report: %v", err)
	}
	if result.State != artifact.StateReady {
		die("no report for %s (state %s); run with -report first", id, result.State)
	}
	meta, body, err := store.Read(ref)
	if err != nil {
		die("read report: %v", err)
	}
	fmt.Printf("run %s at %s\n\n%s", meta.RunID, meta.CreatedAt.Format("2006-01-02 15:04:05Z07:00"), body)
}

func runValidateCheck(args []string) {
	if len(args) != 1 {
		usage("Usage: sizegate validate-check /path/to/check.yaml")
	}
	file, err := plugins.LoadDefinitionFile(args[0])
	if err != nil {
		fmt.Printf("Invalid: %s\n- %v\n", args[0], err)
		os.Exit(1)
	}
	threshold, _ := file.Definition.Threshold()
	fmt.Printf("OK: %s (%s, %d directories, %d bytes)\n",
		file.Path, file.Definition.ID, len(file.Definition.Directories), threshold)
}

func usage(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
