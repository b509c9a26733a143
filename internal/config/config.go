// internal/config/config.go
//
// This package handles configuration and the .kanban data directory.
// Every project that uses the board gets a .kanban/ folder in its root
// unless KANBAN_DIR points somewhere else.

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
	// DataDirName is the directory created in each project.
	DataDirName = ".kanban"

	// EnvDataDir overrides the data directory location.
	EnvDataDir = "KANBAN_DIR"

	// DefaultStorageKey is the single key the task collection lives under.
	DefaultStorageKey = "kanban-tasks"

	// MinColumnWidth keeps a card wide enough for its date and controls.
	MinColumnWidth = 24

	defaultColumnWidth = 30
	defaultBackend     = "file"
)

const defaultProjectConfigYAML = `# kanban board configuration
version: 1

storage:
  # file keeps one file per key under .kanban/state, sqlite keeps a kv table in
  # .kanban/state/kanban.db, memory forgets everything on exit.
  backend: file
  key: kanban-tasks

ui:
  mouse: true
  show_log: false
  column_width: 30
`

// StorageConfig selects where the task collection is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Key     string `yaml:"key"`
}

// UIConfig tunes the terminal board.
type UIConfig struct {
	Mouse       *bool `yaml:"mouse,omitempty"`
	ShowLog     bool  `yaml:"show_log"`
	ColumnWidth int   `yaml:"column_width"`
}

// ProjectConfig models .kanban/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
}

// Config holds the runtime configuration for the board.
type Config struct {
	// ProjectDir is the directory the board was launched from
	ProjectDir string

	// DataDir is ProjectDir/.kanban unless overridden
	DataDir string

	Project ProjectConfig
}

// ResolveDataDir picks the data directory: an explicit override wins, then
// KANBAN_DIR, then .kanban inside the project directory.
func ResolveDataDir(projectDir, override string) string {
	if dir := strings.TrimSpace(override); dir != "" {
		return resolvePath(projectDir, dir)
	}
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		return resolvePath(projectDir, dir)
	}
	return filepath.Join(projectDir, DataDirName)
}

// InitDataDir creates the data directory structure.
//
// Structure created:
// .kanban/
// ├── config.yaml
// ├── logs/    <- kanban.log
// └── state/   <- persisted task collection
func InitDataDir(dataDir string) error {
	dirs := []string{
		filepath.Join(dataDir, "logs"),
		filepath.Join(dataDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureProjectConfig(filepath.Join(dataDir, "config.yaml"))
}

// NewConfig loads the configuration rooted at dataDir. A missing config file
// yields the defaults.
func NewConfig(projectDir, dataDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		DataDir:    dataDir,
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StateDir returns the directory holding persisted state.
func (c *Config) StateDir() string {
	return filepath.Join(c.DataDir, "state")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// LogPath returns the board's log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "kanban.log")
}

// ProjectConfigPath returns the on-disk location for the config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.DataDir, "config.yaml")
}

// StorageBackend returns the configured backend name.
func (c *Config) StorageBackend() string {
	return c.Project.Storage.Backend
}

// StorageKey returns the key the task collection is stored under.
func (c *Config) StorageKey() string {
	return c.Project.Storage.Key
}

// MouseEnabled reports whether drag-and-drop with the mouse is turned on.
func (c *Config) MouseEnabled() bool {
	if c.Project.UI.Mouse == nil {
		return true
	}
	return *c.Project.UI.Mouse
}

// ColumnWidth returns the width of one board column.
func (c *Config) ColumnWidth() int {
	return c.Project.UI.ColumnWidth
}

// OverrideBackend replaces the storage backend for this run only.
func (c *Config) OverrideBackend(backend string) error {
	backend = normalizeName(backend)
	if backend == "" {
		return nil
	}
	if !validBackend(backend) {
		return fmt.Errorf("config: storage backend must be file, sqlite or memory, got %q", backend)
	}
	c.Project.Storage.Backend = backend
	return nil
}

// DisableMouse turns mouse capture off for this run only.
func (c *Config) DisableMouse() {
	off := false
	c.Project.UI.Mouse = &off
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
		Storage: StorageConfig{
			Backend: defaultBackend,
			Key:     DefaultStorageKey,
		},
		UI: UIConfig{
			ColumnWidth: defaultColumnWidth,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Storage.Backend) == "" {
		pc.Storage.Backend = defaultBackend
	}
	if strings.TrimSpace(pc.Storage.Key) == "" {
		pc.Storage.Key = DefaultStorageKey
	}
	if pc.UI.ColumnWidth == 0 {
		pc.UI.ColumnWidth = defaultColumnWidth
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Storage.Backend = normalizeName(pc.Storage.Backend)
	pc.Storage.Key = strings.TrimSpace(pc.Storage.Key)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if !validBackend(pc.Storage.Backend) {
		return fmt.Errorf("storage.backend must be 'file', 'sqlite' or 'memory'")
	}
	if strings.ContainsAny(pc.Storage.Key, `/\`) {
		return fmt.Errorf("storage.key must not contain path separators")
	}
	if pc.UI.ColumnWidth < MinColumnWidth {
		return fmt.Errorf("ui.column_width must be >= %d", MinColumnWidth)
	}
	return nil
}

func validBackend(name string) bool {
	switch name {
	case "file", "sqlite", "memory":
		return true
	default:
		return false
	}
}

func normalizeName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
