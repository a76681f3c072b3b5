// Package config provides the tidybrew application configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appConfigDir  = ".config/tidybrew"
	appConfigFile = "config.yaml"
)

// Defaults applied to missing keys.
const (
	DefaultHistoryDB   = "~/.local/state/tidybrew/history.db"
	DefaultHistoryKeep = 50
	DefaultExportName  = "brew-packages-{{ .Hostname | toLower }}.json"
)

// AppConfig is stored in ~/.config/tidybrew/config.yaml.
type AppConfig struct {
	// BrewPath is the brew binary. Empty means auto-detect.
	BrewPath string
	// Hostname replaces the detected host name in history and export names.
	Hostname string
	// HistoryDB is the SQLite file holding batch history.
	HistoryDB string
	// ExportName is a template for the default export file name.
	ExportName string
	// Timeout bounds each brew call. Zero disables it.
	Timeout time.Duration
	// HistoryKeep is how many batches to retain.
	HistoryKeep int
	// History enables batch history recording.
	History bool
}

// fileConfig is the on-disk shape. Pointers distinguish a missing key from
// its zero value.
type fileConfig struct {
	History     *bool  `yaml:"history,omitempty"`
	HistoryKeep *int   `yaml:"history_keep,omitempty"`
	BrewPath    string `yaml:"brew_path,omitempty"`
	Hostname    string `yaml:"hostname,omitempty"`
	Timeout     string `yaml:"timeout,omitempty"`
	HistoryDB   string `yaml:"history_db,omitempty"`
	ExportName  string `yaml:"export_name,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	return &AppConfig{
		History:     true,
		HistoryDB:   DefaultHistoryDB,
		HistoryKeep: DefaultHistoryKeep,
		ExportName:  DefaultExportName,
	}
}

// Load reads the configuration at path. A missing file yields Default.
// Invalid YAML or values are reported as *FieldError wrapping
// ErrInvalidConfig.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user config, intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, filling missing keys with defaults.
func Parse(data []byte) (*AppConfig, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, NewFieldError("", "", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}

	cfg := Default()

	cfg.BrewPath = fc.BrewPath
	cfg.Hostname = strings.TrimSpace(fc.Hostname)

	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return nil, NewFieldError("timeout", fc.Timeout, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
		}

		cfg.Timeout = d
	}

	if fc.History != nil {
		cfg.History = *fc.History
	}

	if fc.HistoryDB != "" {
		cfg.HistoryDB = fc.HistoryDB
	}

	if fc.HistoryKeep != nil {
		cfg.HistoryKeep = *fc.HistoryKeep
	}

	if fc.ExportName != "" {
		cfg.ExportName = fc.ExportName
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAppConfig loads ~/.config/tidybrew/config.yaml.
func LoadAppConfig() (*AppConfig, error) {
	path := AppConfigPath()
	if path == "" {
		return Default(), nil
	}

	return Load(path)
}

// Validate checks value ranges.
func (c *AppConfig) Validate() error {
	ve := &ValidationErrors{}

	if c.Timeout < 0 {
		ve.Add(NewFieldError("timeout", c.Timeout.String(), fmt.Errorf("%w: must not be negative", ErrInvalidConfig)))
	}

	if c.HistoryKeep < 0 {
		ve.Add(NewFieldError("history_keep", fmt.Sprint(c.HistoryKeep), fmt.Errorf("%w: must not be negative", ErrInvalidConfig)))
	}

	if c.History && strings.TrimSpace(c.HistoryDB) == "" {
		ve.Add(NewFieldError("history_db", c.HistoryDB, fmt.Errorf("%w: required when history is enabled", ErrInvalidConfig)))
	}

	switch len(ve.Errors) {
	case 0:
		return nil
	case 1:
		return ve.Errors[0]
	}

	return ve
}

// Save writes cfg to path with a header comment.
func Save(cfg *AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	fc := fileConfig{
		BrewPath:    cfg.BrewPath,
		Hostname:    cfg.Hostname,
		HistoryDB:   cfg.HistoryDB,
		ExportName:  cfg.ExportName,
		History:     &cfg.History,
		HistoryKeep: &cfg.HistoryKeep,
	}

	if cfg.Timeout > 0 {
		fc.Timeout = cfg.Timeout.String()
	}

	data, err := marshalYAML(fc)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	content := fmt.Sprintf("# tidybrew configuration\n# brew_path is detected automatically when empty\n\n%s", string(data))

	// Use 0600 permissions to restrict access to owner only
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SaveAppConfig saves cfg to ~/.config/tidybrew/config.yaml.
func SaveAppConfig(cfg *AppConfig) error {
	path := AppConfigPath()
	if path == "" {
		return errors.New("cannot determine home directory")
	}

	return Save(cfg, path)
}

// AppConfigPath returns the path where the app config is stored.
// Returns an empty string if the home directory cannot be determined.
func AppConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, appConfigDir, appConfigFile)
}

// PathRenderer renders template strings. Used to inject the template engine
// without an import cycle.
type PathRenderer interface {
	RenderString(name, tmplStr string) (string, error)
}

// ExportPath renders ExportName and places it in dir unless the rendered
// name is already a path.
func (c *AppConfig) ExportPath(renderer PathRenderer, dir string) (string, error) {
	name := c.ExportName
	if name == "" {
		name = DefaultExportName
	}

	rendered, err := renderer.RenderString("export_name", name)
	if err != nil {
		return "", NewFieldError("export_name", name, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}

	rendered = strings.TrimSpace(rendered)
	if rendered == "" {
		return "", NewFieldError("export_name", name, fmt.Errorf("%w: renders to an empty name", ErrInvalidConfig))
	}

	rendered = ExpandPath(rendered)
	if filepath.IsAbs(rendered) || strings.ContainsRune(rendered, filepath.Separator) {
		return rendered, nil
	}

	return filepath.Join(dir, rendered), nil
}

// ExpandPath expands a leading ~ and environment variables. It is meant for
// configuration values.
func ExpandPath(path string) string {
	return os.ExpandEnv(ExpandHome(path))
}

// ExpandHome expands a leading ~ and leaves the rest of path untouched, so
// names containing $ survive.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}

	return path
}

func marshalYAML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
