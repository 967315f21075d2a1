// internal/config/config.go
//
// This package handles configuration and the .sizegate directory structure.
// A project opts into persistent state (logs, check plugins, reports) by
// running `sizegate init`, which creates .sizegate/ in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// StateDir is the name of the directory we create in each project
	StateDir = ".sizegate"

	// DefaultCheckID is the built-in package size check.
	DefaultCheckID = "crt-size-check"

	// ProjectEnv names the environment variable that supplies the project
	// path when no -project flag is given.
	ProjectEnv = "SIZEGATE_PROJECT"
)

const defaultProjectConfigYAML = `# sizegate project configuration
version: 1

# Check to run when -check is not given. Extra checks can be declared as
# YAML files under .sizegate/checks/.
checks:
  default: crt-size-check

# Write a markdown size report to .sizegate/reports/<check>.md after each run.
report:
  enabled: false
`

// ChecksConfig captures check selection preferences.
type ChecksConfig struct {
	Default string `yaml:"default"`
}

// ReportConfig controls report artifact emission.
type ReportConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ProjectConfig models .sizegate/config.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version"`
	Checks  ChecksConfig `yaml:"checks"`
	Report  ReportConfig `yaml:"report"`
}

// Config holds the runtime configuration for one project.
type Config struct {
	// ProjectDir is the root whose dist/ outputs are measured
	ProjectDir string

	// StateProjectDir is ProjectDir/.sizegate
	StateProjectDir string

	Project ProjectConfig
}

// InitStateDir creates the .sizegate directory structure in the given project directory.
//
// Structure created:
// .sizegate/
// ├── config.yaml
// ├── checks/      <- YAML check plugins
// ├── logs/        <- Run logbook
// └── reports/     <- Size report artifacts
func InitStateDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, StateDir)

	dirs := []string{
		filepath.Join(stateDir, "checks"),
		filepath.Join(stateDir, "logs"),
		filepath.Join(stateDir, "reports"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if err := ensureProjectConfig(filepath.Join(stateDir, "config.yaml")); err != nil {
		return err
	}

	return nil
}

// NewConfig creates a new Config instance populated with project settings.
// A project without .sizegate/config.yaml gets the defaults; nothing is written.
func NewConfig(projectDir string) (*Config, error) {
	projectDir = strings.TrimSpace(projectDir)
	if projectDir == "" {
		return nil, fmt.Errorf("config: project directory is required")
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}

	cfg := &Config{
		ProjectDir:      abs,
		StateProjectDir: filepath.Join(abs, StateDir),
		Project:         defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Initialized reports whether the project has a .sizegate directory.
func (c *Config) Initialized() bool {
	info, err := os.Stat(c.StateProjectDir)
	return err == nil && info.IsDir()
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateProjectDir, "logs")
}

// LogbookPath returns the run log file.
func (c *Config) LogbookPath() string {
	return filepath.Join(c.LogsDir(), "sizegate.log")
}

// ChecksDir returns the directory scanned for check plugins
func (c *Config) ChecksDir() string {
	return filepath.Join(c.StateProjectDir, "checks")
}

// ReportsDir returns the directory where report artifacts are written
func (c *Config) ReportsDir() string {
	return filepath.Join(c.StateProjectDir, "reports")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateProjectDir, "config.yaml")
}

// DefaultCheck returns the configured default check identifier.
func (c *Config) DefaultCheck() string {
	return c.Project.Checks.Default
}

// ReportEnabled reports whether runs should emit a report artifact.
func (c *Config) ReportEnabled() bool {
	return c.Project.Report.Enabled
}

// SetDefaultCheck updates the default check identifier and persists the
// value back to .sizegate/config.yaml.
func (c *Config) SetDefaultCheck(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("config: check id is required")
	}
	c.Project.Checks.Default = id
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Checks: ChecksConfig{
			Default: DefaultCheckID,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Checks.Default = strings.TrimSpace(pc.Checks.Default)
	if pc.Checks.Default == "" {
		pc.Checks.Default = DefaultCheckID
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if strings.ContainsAny(pc.Checks.Default, " \t/\\") {
		return fmt.Errorf("checks.default %q is not a valid check id", pc.Checks.Default)
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.StateProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure state dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}

// ResolveProjectDir picks the project directory from an explicit flag value,
// then the SIZEGATE_PROJECT environment variable, then the working directory.
func ResolveProjectDir(flagValue string) (string, error) {
	candidate := strings.TrimSpace(flagValue)
	if candidate == "" {
		candidate = strings.TrimSpace(os.Getenv(ProjectEnv))
	}
	if candidate == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("config: determine working directory: %w", err)
		}
		candidate = wd
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("config: resolve project dir: %w", err)
	}
	return abs, nil
}
