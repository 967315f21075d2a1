// cmd/sizegate/main.go
//
// Entry point for the sizegate CLI. A build pipeline runs it after packaging:
//
//	sizegate [-check ID] [-project DIR] [-set max_bytes=5MB] [-report] [-tui]
//
// Flow:
// 1. Load .env, resolve the project directory and its .sizegate config
// 2. Register the built-in check plus any YAML checks under .sizegate/checks
// 3. Resolve the selected check and run it; a failed check exits non-zero

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/sizegate/internal/config"
	"github.com/kingrea/sizegate/internal/logbook"
	"github.com/kingrea/sizegate/internal/module"
	"github.com/kingrea/sizegate/internal/modules"
	"github.com/kingrea/sizegate/internal/modules/size_check"
	"github.com/kingrea/sizegate/internal/sizecheck"
	"github.com/kingrea/sizegate/internal/tui"
	"github.com/kingrea/sizegate/plugins"
)

func main() {
	// A missing .env is normal; the environment may already be populated by CI.
	_ = godotenv.Load()

	if handleSubcommand(os.Args[1:]) {
		return
	}

	checkID := flag.String("check", "", "check identifier to run (defaults to checks.default in .sizegate/config.yaml)")
	projectDir := flag.String("project", "", "path to the project directory (defaults to $SIZEGATE_PROJECT or cwd)")
	configFile := flag.String("config-file", "", "path to YAML/JSON file with check config overrides")
	writeReport := flag.Bool("report", false, "write a markdown size report to .sizegate/reports")
	useTUI := flag.Bool("tui", false, "show the interactive report viewer")
	sets := keyValueFlag{}
	flag.Var(&sets, "set", "check config override (key=value, repeatable)")
	flag.Parse()

	cfg := loadConfig(*projectDir)
	lb := openLogbook(cfg)
	reg := buildRegistry(cfg)

	id := strings.TrimSpace(*checkID)
	if id == "" {
		id = cfg.DefaultCheck()
	}
	overrides, err := buildModuleConfig(*configFile, sets)
	if err != nil {
		die("load config overrides: %v", err)
	}
	mod, err := reg.Resolve(id, overrides)
	if err != nil {
		die("resolve check: %v", err)
	}
	ctx := module.NewContext(cfg, lb)
	if *writeReport {
		ctx = ctx.WithReport(true)
	}
	if *useTUI {
		runViewer(mod, ctx)
		return
	}

	result, err := mod.Run(ctx)
	finish(mod.Info(), result, err)
}

// sizeCheck is implemented by size check modules, built-in or YAML-defined.
type sizeCheck interface {
	Auditor(reporter sizecheck.Reporter) *sizecheck.Auditor
	Reporter(ctx *module.ModuleContext, w io.Writer) sizecheck.Reporter
}

func runViewer(mod module.Module, ctx *module.ModuleContext) {
	info := mod.Info()
	check, ok := mod.(sizeCheck)
	if !ok {
		die("%s does not support -tui", info.ID)
	}
	var console bytes.Buffer
	auditor := check.Auditor(check.Reporter(ctx, &console))
	app := tui.NewApp(info.Label(), ctx.Config.ProjectDir, auditor, tui.WithLogbook(ctx.Logbook))
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		die("run viewer: %v", err)
	}
	report, err := app.Result()
	if errors.Is(err, tui.ErrNotFinished) {
		ctx.Logbook.Warn("%s run=%s viewer closed before measurement finished", info.ID, ctx.RunID)
		die("%s: %v", info.Label(), err)
	}
	// The alternate screen discards everything drawn during the run.
	_, _ = console.WriteTo(ctx.Out)
	result, err := size_check.Conclude(ctx, info, report, err)
	finish(info, result, err)
}

func finish(info module.Info, result module.Result, err error) {
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	if err != nil {
		die("%s failed: %v", info.Label(), err)
	}
}

func loadConfig(projectFlag string) *config.Config {
	project, err := config.ResolveProjectDir(projectFlag)
	if err != nil {
		die("%v", err)
	}
	cfg, err := config.NewConfig(project)
	if err != nil {
		die("load config: %v", err)
	}
	return cfg
}

// openLogbook returns nil for projects without .sizegate so plain audits
// leave the filesystem untouched.
func openLogbook(cfg *config.Config) *logbook.Logbook {
	if !cfg.Initialized() {
		return nil
	}
	lb, err := logbook.New(cfg.LogbookPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logbook disabled: %v\n", err)
		return nil
	}
	return lb
}

func buildRegistry(cfg *config.Config) *module.Registry {
	reg := module.NewRegistry()
	modules.RegisterBuiltins(reg)
	if err := plugins.RegisterCheckPlugins(reg, cfg); err != nil {
		die("load checks: %v", err)
	}
	return reg
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type keyValueFlag map[string]string

func (kv *keyValueFlag) String() string {
	if kv == nil || len(*kv) == 0 {
		return ""
	}
	var pairs []string
	for key, value := range *kv {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
	}
	return strings.Join(pairs, ", ")
}

func (kv *keyValueFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return fmt.Errorf("override key is empty in %q", value)
	}
	if *kv == nil {
		*kv = keyValueFlag{}
	}
	(*kv)[key] = parts[1]
	return nil
}

func buildModuleConfig(configFile string, overrides keyValueFlag) (module.Config, error) {
	var cfg module.Config
	if path := strings.TrimSpace(configFile); path != "" {
		fileCfg, err := readModuleConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if len(overrides) > 0 {
		if cfg == nil {
			cfg = module.Config{}
		}
		for key, value := range overrides {
			cfg[key] = value
		}
	}
	if len(cfg) == 0 {
		return nil, nil
	}
	return cfg, nil
}

func readModuleConfigFile(path string) (module.Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open config file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, expected a file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("config file %s is empty", path)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	cfg := make(module.Config, len(raw))
	for key, value := range raw {
		cfg[key] = value
	}
	return cfg, nil
}
