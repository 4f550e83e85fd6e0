package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauern/hookguard/internal/constants"
	yaml "gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files whose extension is not
// yml, yaml, toml or json.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Environment overrides
const (
	EnvThreshold = "HOOKGUARD_THRESHOLD"
	EnvNoNotify  = "HOOKGUARD_NO_NOTIFY"
)

// SupportedExtensions lists config file extensions in search order.
var SupportedExtensions = []string{".yml", ".yaml", ".toml", ".json"}

// Config is the hookguard configuration file.
type Config struct {
	Prompt        PromptConfig        `yaml:"prompt" toml:"prompt" json:"prompt"`
	Security      SecurityConfig      `yaml:"security" toml:"security" json:"security"`
	Notifications NotificationsConfig `yaml:"notifications" toml:"notifications" json:"notifications"`
	Automation    AutomationConfig    `yaml:"automation" toml:"automation" json:"automation"`
	Logging       LoggingConfig       `yaml:"logging" toml:"logging" json:"logging"`
	Stats         StatsConfig         `yaml:"stats" toml:"stats" json:"stats"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-" toml:"-" json:"-"`
}

// PromptConfig controls prompt scoring.
type PromptConfig struct {
	Threshold int `yaml:"threshold" toml:"threshold" json:"threshold"`
	// DisabledRules names scoring rules to skip, e.g. "context".
	DisabledRules []string `yaml:"disabledRules,omitempty" toml:"disabledRules,omitempty" json:"disabledRules,omitempty"`
}

// SecurityConfig controls Bash command screening.
type SecurityConfig struct {
	BlockDestructive bool `yaml:"blockDestructive" toml:"blockDestructive" json:"blockDestructive"`
	// Extra patterns are checked after the built-in tables.
	ExtraDestructive []string `yaml:"extraDestructive,omitempty" toml:"extraDestructive,omitempty" json:"extraDestructive,omitempty"`
	ExtraSystemLevel []string `yaml:"extraSystemLevel,omitempty" toml:"extraSystemLevel,omitempty" json:"extraSystemLevel,omitempty"`
}

// NotificationsConfig toggles desktop notifications.
type NotificationsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled" json:"enabled"`
}

// AutomationConfig controls the post-edit formatter and linter.
type AutomationConfig struct {
	Format       bool       `yaml:"format" toml:"format" json:"format"`
	Lint         bool       `yaml:"lint" toml:"lint" json:"lint"`
	BlockOnError bool       `yaml:"blockOnError" toml:"blockOnError" json:"blockOnError"`
	Rules        []ToolRule `yaml:"rules,omitempty" toml:"rules,omitempty" json:"rules,omitempty"`
}

// ToolRule overrides the built-in tools for files matching Glob. Commands are
// split on whitespace and the file path is appended as the last argument.
type ToolRule struct {
	Glob   string   `yaml:"glob" toml:"glob" json:"glob"`
	Format []string `yaml:"format,omitempty" toml:"format,omitempty" json:"format,omitempty"`
	Lint   []string `yaml:"lint,omitempty" toml:"lint,omitempty" json:"lint,omitempty"`
}

// LoggingConfig controls the event log.
type LoggingConfig struct {
	Dir      string            `yaml:"dir,omitempty" toml:"dir,omitempty" json:"dir,omitempty"`
	Format   string            `yaml:"format" toml:"format" json:"format"`
	Rotation LogRotationConfig `yaml:"rotation" toml:"rotation" json:"rotation"`
}

// StatsConfig controls session statistics.
type StatsConfig struct {
	Dir     string `yaml:"dir,omitempty" toml:"dir,omitempty" json:"dir,omitempty"`
	Archive bool   `yaml:"archive" toml:"archive" json:"archive"`
}

// DefaultThreshold is the minimum prompt score when none is configured.
const DefaultThreshold = 60

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prompt:        PromptConfig{Threshold: DefaultThreshold},
		Security:      SecurityConfig{BlockDestructive: true},
		Notifications: NotificationsConfig{Enabled: true},
		Automation:    AutomationConfig{Format: true, Lint: true},
		Logging: LoggingConfig{
			Format:   LoggingFormatText,
			Rotation: DefaultLogRotationConfig(),
		},
		Stats: StatsConfig{Archive: true},
	}
}

// Validate checks value ranges and glob syntax.
func (c *Config) Validate() error {
	if c.Prompt.Threshold < 0 || c.Prompt.Threshold > 100 {
		return fmt.Errorf("prompt.threshold must be between 0 and 100, got %d", c.Prompt.Threshold)
	}
	if !IsValidLoggingFormat(c.Logging.Format) {
		return fmt.Errorf("logging.format %q is not one of text, jsonl, pretty", c.Logging.Format)
	}
	for i, r := range c.Automation.Rules {
		if strings.TrimSpace(r.Glob) == "" {
			return fmt.Errorf("automation.rules[%d] missing glob", i)
		}
		if !doublestar.ValidatePattern(r.Glob) {
			return fmt.Errorf("automation.rules[%d] invalid glob %q", i, r.Glob)
		}
	}
	return nil
}

// LogDir returns the event log directory, defaulting to ~/.claude/hook-logs.
func (c *Config) LogDir() string {
	return resolveDir(c.Logging.Dir)
}

// StatsDir returns the session statistics directory, defaulting to the log dir.
func (c *Config) StatsDir() string {
	if c.Stats.Dir != "" {
		return resolveDir(c.Stats.Dir)
	}
	return c.LogDir()
}

func resolveDir(dir string) string {
	if dir == "" {
		return DefaultHookLogsDir()
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}

// DefaultHookLogsDir returns ~/.claude/hook-logs, or a relative path when the
// home directory is unknown.
func DefaultHookLogsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(constants.ClaudeDir, constants.HookLogsDir)
	}
	return filepath.Join(home, constants.ClaudeDir, constants.HookLogsDir)
}

// XDGConfigDir returns $XDG_CONFIG_HOME/hookguard, falling back to ~/.config/hookguard.
func XDGConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			base = ".config"
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, constants.AppName)
}

// CandidatePaths returns config file locations in priority order: project
// files under workDir/.claude/hooks first, then the XDG config directory.
func CandidatePaths(workDir string) []string {
	var paths []string
	projectDir := constants.GetConfigDir(workDir)
	for _, ext := range SupportedExtensions {
		paths = append(paths, filepath.Join(projectDir, constants.ConfigBaseName+ext))
	}
	xdg := XDGConfigDir()
	for _, ext := range SupportedExtensions {
		paths = append(paths, filepath.Join(xdg, "config"+ext))
	}
	return paths
}

// Load reads the first config file found for workDir and applies environment
// overrides. With no file present it returns the defaults.
func Load(workDir string) (*Config, error) {
	for _, path := range CandidatePaths(workDir) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		applyEnv(cfg)
		return cfg, nil
	}
	cfg := Default()
	applyEnv(cfg)
	return cfg, nil
}

// LoadOrDefault is Load that never fails: errors are reported on stderr and
// the defaults are used instead.
func LoadOrDefault(workDir string) *Config {
	cfg, err := Load(workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using default configuration\n", err)
		cfg = Default()
		applyEnv(cfg)
	}
	return cfg
}

// LoadFile parses a single config file, layering it over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - paths come from CandidatePaths or the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// FormatFromPath returns the format name for a file extension ("yaml",
// "toml", "json"), or the bare extension if unknown.
func FormatFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "yml" {
		return "yaml"
	}
	return ext
}

// Parse decodes data in the given format over the defaults and validates it.
func Parse(data []byte, format string) (*Config, error) {
	cfg := Default()
	var err error
	switch format {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, cfg)
	case "toml":
		err = toml.Unmarshal(data, cfg)
	case "json":
		err = json.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode renders cfg in the given format.
func Encode(cfg *Config, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteFile encodes cfg by the extension of path and writes it, creating the
// parent directory. An existing file is only replaced when overwrite is set.
func WriteFile(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s: %w", path, os.ErrExist)
		}
	}
	data, err := Encode(cfg, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvThreshold)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			fmt.Fprintf(os.Stderr, "Warning: ignoring %s=%q (want 0-100)\n", EnvThreshold, v)
		} else {
			cfg.Prompt.Threshold = n
		}
	}
	if v := os.Getenv(EnvNoNotify); v != "" && v != "0" && !strings.EqualFold(v, "false") {
		cfg.Notifications.Enabled = false
	}
}
