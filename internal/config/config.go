// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/polychat/internal/cloud"
	"github.com/jeranaias/polychat/internal/generative"
	"github.com/jeranaias/polychat/internal/local"
	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/settings"
	"github.com/jeranaias/polychat/internal/util"
)

// Version is the current config file schema version.
const Version = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete polychat configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	// Chat holds the initial sampling parameters and backend selection
	Chat settings.Settings `toml:"chat" json:"chat" yaml:"chat"`

	Cloud      CloudConfig      `toml:"cloud" json:"cloud" yaml:"cloud"`
	Local      LocalConfig      `toml:"local" json:"local" yaml:"local"`
	Generative GenerativeConfig `toml:"generative" json:"generative" yaml:"generative"`
	Log        LogConfig        `toml:"log" json:"log" yaml:"log"`
	UI         UIConfig         `toml:"ui" json:"ui" yaml:"ui"`

	// LoadedFrom is the file the config was read from; empty for defaults.
	LoadedFrom string `toml:"-" json:"-" yaml:"-"`

	envProviderInvalid string
}

// CloudConfig configures the Groq adapter.
type CloudConfig struct {
	APIKey      string `toml:"api_key" json:"api_key" yaml:"api_key"`
	BaseURL     string `toml:"base_url" json:"base_url" yaml:"base_url"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
}

// LocalConfig configures the LM Studio adapter.
type LocalConfig struct {
	URL         string `toml:"url" json:"url" yaml:"url"`
	Model       string `toml:"model" json:"model" yaml:"model"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
}

// GenerativeConfig configures the Gemini adapter.
type GenerativeConfig struct {
	APIKey      string `toml:"api_key" json:"api_key" yaml:"api_key"`
	BaseURL     string `toml:"base_url" json:"base_url" yaml:"base_url"`
	Model       string `toml:"model" json:"model" yaml:"model"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `toml:"level" json:"level" yaml:"level"`    // trace, debug, info, warn, error
	Format string `toml:"format" json:"format" yaml:"format"` // console or json
	File   string `toml:"file" json:"file" yaml:"file"`       // empty: discarded in the TUI, stderr elsewhere
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Markdown       bool `toml:"markdown" json:"markdown" yaml:"markdown"`
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps" yaml:"show_timestamps"`
	WatchConfig    bool `toml:"watch_config" json:"watch_config" yaml:"watch_config"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: Version,
		Chat:    settings.Default(),
		Cloud: CloudConfig{
			BaseURL:     cloud.DefaultBaseURL,
			TimeoutSecs: int(cloud.DefaultTimeout / time.Second),
		},
		Local: LocalConfig{
			URL:         local.DefaultBaseURL,
			TimeoutSecs: 120,
		},
		Generative: GenerativeConfig{
			BaseURL:     generative.DefaultBaseURL,
			Model:       generative.DefaultModel,
			TimeoutSecs: int(generative.DefaultTimeout / time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			Markdown:    true,
			WatchConfig: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the polychat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".polychat"), nil
}

// CandidatePaths returns the config files Load tries, in order.
func CandidatePaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.yaml"),
	}, nil
}

// ConfigPathTOML returns the path Save writes to.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the first config file that exists, applies environment
// overrides and validates the result. With no file present the built-in
// defaults are used.
func Load() (*Config, error) {
	paths, err := CandidatePaths()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	return cfg, cfg.finish()
}

// LoadFromPath loads configuration from a specific file. The decoder is
// chosen by extension: .json, .yaml/.yml, anything else TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.LoadedFrom = path

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current value.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadYAML decodes a YAML file over cfg.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

// SetDefaults fills empty strings and zero timeouts with defaults.
// Numeric sampling values are not touched; zero is a valid temperature.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Chat.CloudModel == "" {
		c.Chat.CloudModel = d.Chat.CloudModel
	}
	if c.Chat.Provider == model.ProviderUnknown {
		c.Chat.Provider = d.Chat.Provider
	}
	if c.Cloud.BaseURL == "" {
		c.Cloud.BaseURL = d.Cloud.BaseURL
	}
	if c.Cloud.TimeoutSecs == 0 {
		c.Cloud.TimeoutSecs = d.Cloud.TimeoutSecs
	}
	if c.Local.URL == "" {
		c.Local.URL = d.Local.URL
	}
	if c.Local.TimeoutSecs == 0 {
		c.Local.TimeoutSecs = d.Local.TimeoutSecs
	}
	if c.Generative.BaseURL == "" {
		c.Generative.BaseURL = d.Generative.BaseURL
	}
	if c.Generative.Model == "" {
		c.Generative.Model = d.Generative.Model
	}
	if c.Generative.TimeoutSecs == 0 {
		c.Generative.TimeoutSecs = d.Generative.TimeoutSecs
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - POLYCHAT_PROVIDER: overrides chat.provider
//   - POLYCHAT_CLOUD_MODEL: overrides chat.cloud_model
//   - GROQ_API_KEY: overrides cloud.api_key
//   - GEMINI_API_KEY: overrides generative.api_key
//   - POLYCHAT_LOCAL_URL: overrides local.url
//   - POLYCHAT_LOG_LEVEL: overrides log.level
//   - POLYCHAT_LOG_FILE: overrides log.file
//
// An unparseable POLYCHAT_PROVIDER is stored as ProviderUnknown so that
// Validate reports it.
func (c *Config) ApplyEnvOverrides() {
	if p := os.Getenv("POLYCHAT_PROVIDER"); p != "" {
		id, _ := model.ParseProvider(p)
		c.Chat.Provider = id
		if id == model.ProviderUnknown {
			c.envProviderInvalid = p
		}
	}
	if m := os.Getenv("POLYCHAT_CLOUD_MODEL"); m != "" {
		c.Chat.CloudModel = m
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.Cloud.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Generative.APIKey = key
	}
	if u := os.Getenv("POLYCHAT_LOCAL_URL"); u != "" {
		c.Local.URL = u
	}
	if level := os.Getenv("POLYCHAT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if file := os.Getenv("POLYCHAT_LOG_FILE"); file != "" {
		c.Log.File = file
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to ~/.polychat/config.toml.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with 0600 permissions,
// since the file may hold API keys.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# polychat configuration file\n")
	buf.WriteString("# Environment variables override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.envProviderInvalid != "" {
		errs = append(errs, ValidationError{
			Field:   "POLYCHAT_PROVIDER",
			Message: fmt.Sprintf("unknown provider %q", c.envProviderInvalid),
		})
	}

	if err := c.Chat.Validate(); err != nil {
		var fieldErrs settings.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, ValidationError{Field: "chat." + fe.Field, Message: fe.Message})
			}
		} else {
			errs = append(errs, ValidationError{Field: "chat", Message: err.Error()})
		}
	}

	errs = append(errs, validateURL("cloud.base_url", c.Cloud.BaseURL)...)
	errs = append(errs, validateURL("local.url", c.Local.URL)...)
	errs = append(errs, validateURL("generative.base_url", c.Generative.BaseURL)...)

	for field, secs := range map[string]int{
		"cloud.timeout_secs":      c.Cloud.TimeoutSecs,
		"local.timeout_secs":      c.Local.TimeoutSecs,
		"generative.timeout_secs": c.Generative.TimeoutSecs,
	} {
		if secs < 0 {
			errs = append(errs, ValidationError{Field: field, Message: "must not be negative"})
		}
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{Field: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)})
	}
	if f := strings.ToLower(c.Log.Format); f != "console" && f != "json" {
		errs = append(errs, ValidationError{Field: "log.format", Message: "must be console or json"})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateURL(field, raw string) ValidateErrors {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ValidateErrors{{Field: field, Message: fmt.Sprintf("invalid URL %q", raw)}}
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Settings returns the initial chat settings.
func (c *Config) Settings() settings.Settings {
	return c.Chat
}

// Timeout converts a TimeoutSecs field to a duration.
func Timeout(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as TOML with API keys redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Cloud.APIKey != "" {
		safe.Cloud.APIKey = "[REDACTED]"
	}
	if safe.Generative.APIKey != "" {
		safe.Generative.APIKey = "[REDACTED]"
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(safe); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
