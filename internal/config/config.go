// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for parley.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.parley/config.toml
//   - ~/.parley/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete parley configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Chat stream configuration
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Typing animation configuration
	Typing TypingConfig `toml:"typing" json:"typing"`

	// Thinking timeline configuration
	Thinking ThinkingConfig `toml:"thinking" json:"thinking"`

	// Session storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Export configuration
	Export ExportConfig `toml:"export" json:"export"`

	// Share configuration
	Share ShareConfig `toml:"share" json:"share"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// ChatConfig contains chat stream source configuration.
type ChatConfig struct {
	// Source selects where assistant replies come from: "simulated" or "network".
	// "simulated" (default): replay canned replies locally, no network needed.
	// "network": stream replies from the configured endpoints.
	Source string `toml:"source" json:"source"`
	// EndpointURL is the completion endpoint for non-streaming replies.
	EndpointURL string `toml:"endpoint_url" json:"endpoint_url"`
	// StreamURL is the streaming (SSE) endpoint for incremental replies.
	StreamURL string `toml:"stream_url" json:"stream_url"`
	// RequestTimeoutSecs bounds a completion request in seconds.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
	// CancelGraceSecs is how long a stream runs before the cancel action is offered.
	CancelGraceSecs int `toml:"cancel_grace_secs" json:"cancel_grace_secs"`
	// SimulatedWordDelayMs is the per-word delay of the simulated source.
	SimulatedWordDelayMs int `toml:"simulated_word_delay_ms" json:"simulated_word_delay_ms"`
}

// TypingConfig contains typing animation configuration.
type TypingConfig struct {
	// Speed is the reveal rate in characters per second (1-120).
	Speed int `toml:"speed" json:"speed"`
	// ReducedMotion disables the typing animation; text appears immediately.
	ReducedMotion bool `toml:"reduced_motion" json:"reduced_motion"`
}

// ThinkingConfig contains thinking timeline configuration.
type ThinkingConfig struct {
	// Visible shows the step timeline while the assistant is working.
	Visible bool `toml:"visible" json:"visible"`
	// ShowDurations appends per-step durations to completed steps.
	ShowDurations bool `toml:"show_durations" json:"show_durations"`
}

// StorageConfig contains session storage configuration.
type StorageConfig struct {
	// Backend selects the storage backend: "file", "sqlite", or "memory".
	Backend string `toml:"backend" json:"backend"`
	// Dir is the storage directory (empty = ~/.parley/store).
	Dir string `toml:"dir" json:"dir"`
	// MaxSessions caps stored sessions; the oldest are evicted beyond it.
	MaxSessions int `toml:"max_sessions" json:"max_sessions"`
	// AutosaveSecs is the autosave interval in seconds (0 disables autosave).
	AutosaveSecs int `toml:"autosave_secs" json:"autosave_secs"`
}

// ExportConfig contains export configuration.
type ExportConfig struct {
	// OutputDir is where exports are written (empty = current directory).
	OutputDir string `toml:"output_dir" json:"output_dir"`
	// IncludeMetadata adds the title/date/count header to exports.
	IncludeMetadata bool `toml:"include_metadata" json:"include_metadata"`
	// IncludeTimestamps adds per-message timestamps to exports.
	IncludeTimestamps bool `toml:"include_timestamps" json:"include_timestamps"`
	// OpenAfterExport opens the exported file with the system default app.
	OpenAfterExport bool `toml:"open_after_export" json:"open_after_export"`
}

// ShareConfig contains share server and client configuration.
type ShareConfig struct {
	// ServerURL is the share server a `parley share` publishes to
	// (empty = local record store only).
	ServerURL string `toml:"server_url" json:"server_url"`
	// Port is the port `parley serve` listens on.
	Port int `toml:"port" json:"port"`
	// AdminTOTPSecret enables TOTP-gated admin endpoints on the share server.
	// SECURITY: keep the config file at 0600; this value is redacted from
	// all debug output.
	AdminTOTPSecret string `toml:"admin_totp_secret" json:"admin_totp_secret"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// ShowTimestamps displays message timestamps in the chat view
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level"`
	// File is the log file path (empty = stderr).
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Chat: ChatConfig{
			Source:               "simulated",
			EndpointURL:          "",
			StreamURL:            "",
			RequestTimeoutSecs:   20,
			CancelGraceSecs:      5,
			SimulatedWordDelayMs: 40,
		},

		Typing: TypingConfig{
			Speed:         30,
			ReducedMotion: false,
		},

		Thinking: ThinkingConfig{
			Visible:       true,
			ShowDurations: true,
		},

		Storage: StorageConfig{
			Backend:      "file",
			Dir:          "",
			MaxSessions:  50,
			AutosaveSecs: 30,
		},

		Export: ExportConfig{
			OutputDir:         "",
			IncludeMetadata:   true,
			IncludeTimestamps: true,
			OpenAfterExport:   false,
		},

		Share: ShareConfig{
			ServerURL:       "",
			Port:            8790,
			AdminTOTPSecret: "",
		},

		UI: UIConfig{
			Theme:          "dark",
			CompactMode:    false,
			ShowTimestamps: true,
		},

		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the parley configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".parley"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to protect
// the admin TOTP secret.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err // File doesn't exist or not accessible
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finalize(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finalize(cfg)
			}
		}
	}

	// Defaults only (with any load error for informational purposes)
	cfg, err = finalize(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// finalize applies env overrides, migration, defaults, and validation.
func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.Migrate()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems; warn and continue.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finalize(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# parley configuration file")
	fmt.Fprintln(file, "# Generated by parley - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Chat settings
	validSources := map[string]bool{"simulated": true, "network": true}
	if !validSources[strings.ToLower(c.Chat.Source)] {
		errs = append(errs, ValidationError{
			Field:   "chat.source",
			Message: fmt.Sprintf("invalid source '%s', must be one of: simulated, network", c.Chat.Source),
		})
	}

	if c.Chat.EndpointURL != "" {
		if _, err := url.ParseRequestURI(c.Chat.EndpointURL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "chat.endpoint_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}
	if c.Chat.StreamURL != "" {
		if _, err := url.ParseRequestURI(c.Chat.StreamURL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "chat.stream_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	if strings.ToLower(c.Chat.Source) == "network" && c.Chat.EndpointURL == "" && c.Chat.StreamURL == "" {
		errs = append(errs, ValidationError{
			Field:   "chat.source",
			Message: "network source requires endpoint_url or stream_url",
		})
	}

	if c.Chat.RequestTimeoutSecs < 1 || c.Chat.RequestTimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "chat.request_timeout_secs",
			Message: fmt.Sprintf("must be 1-300 seconds, got %d", c.Chat.RequestTimeoutSecs),
		})
	}
	if c.Chat.CancelGraceSecs < 0 || c.Chat.CancelGraceSecs > 60 {
		errs = append(errs, ValidationError{
			Field:   "chat.cancel_grace_secs",
			Message: fmt.Sprintf("must be 0-60 seconds, got %d", c.Chat.CancelGraceSecs),
		})
	}
	if c.Chat.SimulatedWordDelayMs < 0 || c.Chat.SimulatedWordDelayMs > 1000 {
		errs = append(errs, ValidationError{
			Field:   "chat.simulated_word_delay_ms",
			Message: fmt.Sprintf("must be 0-1000 ms, got %d", c.Chat.SimulatedWordDelayMs),
		})
	}

	// Typing settings
	if c.Typing.Speed < 1 || c.Typing.Speed > 120 {
		errs = append(errs, ValidationError{
			Field:   "typing.speed",
			Message: fmt.Sprintf("must be 1-120 characters per second, got %d", c.Typing.Speed),
		})
	}

	// Storage settings
	validBackends := map[string]bool{"file": true, "sqlite": true, "memory": true}
	if !validBackends[strings.ToLower(c.Storage.Backend)] {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite, memory", c.Storage.Backend),
		})
	}
	if c.Storage.MaxSessions < 1 || c.Storage.MaxSessions > 1000 {
		errs = append(errs, ValidationError{
			Field:   "storage.max_sessions",
			Message: fmt.Sprintf("must be 1-1000, got %d", c.Storage.MaxSessions),
		})
	}
	if c.Storage.AutosaveSecs != 0 && (c.Storage.AutosaveSecs < 5 || c.Storage.AutosaveSecs > 600) {
		errs = append(errs, ValidationError{
			Field:   "storage.autosave_secs",
			Message: fmt.Sprintf("must be 0 (disabled) or 5-600 seconds, got %d", c.Storage.AutosaveSecs),
		})
	}

	// Share settings
	if c.Share.ServerURL != "" {
		if _, err := url.ParseRequestURI(c.Share.ServerURL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "share.server_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}
	if c.Share.Port < 1 || c.Share.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "share.port",
			Message: fmt.Sprintf("must be 1-65535, got %d", c.Share.Port),
		})
	}

	// UI settings
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	// Logging settings
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	// Chat defaults
	if c.Chat.Source == "" {
		c.Chat.Source = defaults.Chat.Source
	}
	if c.Chat.RequestTimeoutSecs == 0 {
		c.Chat.RequestTimeoutSecs = defaults.Chat.RequestTimeoutSecs
	}
	if c.Chat.CancelGraceSecs == 0 {
		c.Chat.CancelGraceSecs = defaults.Chat.CancelGraceSecs
	}
	if c.Chat.SimulatedWordDelayMs == 0 {
		c.Chat.SimulatedWordDelayMs = defaults.Chat.SimulatedWordDelayMs
	}

	// Typing defaults
	if c.Typing.Speed == 0 {
		c.Typing.Speed = defaults.Typing.Speed
	}

	// Storage defaults
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.MaxSessions == 0 {
		c.Storage.MaxSessions = defaults.Storage.MaxSessions
	}

	// Share defaults
	if c.Share.Port == 0 {
		c.Share.Port = defaults.Share.Port
	}

	// UI defaults
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// Migrate handles migration from old configuration formats to new ones.
func (c *Config) Migrate() {
	// Old source names from early releases
	switch strings.ToLower(c.Chat.Source) {
	case "mock", "local":
		c.Chat.Source = "simulated"
	case "sse", "http":
		c.Chat.Source = "network"
	}

	// Theme names were briefly capitalized
	c.UI.Theme = strings.ToLower(c.UI.Theme)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PARLEY_SOURCE: overrides chat.source
//   - PARLEY_ENDPOINT: overrides chat.endpoint_url
//   - PARLEY_STREAM_URL: overrides chat.stream_url
//   - PARLEY_THEME: overrides ui.theme
//   - PARLEY_REDUCED_MOTION: set to "1" or "true" to disable animations
//   - PARLEY_STORAGE_BACKEND: overrides storage.backend
//   - PARLEY_STORAGE_DIR: overrides storage.dir
//   - PARLEY_SHARE_URL: overrides share.server_url
//   - PARLEY_SHARE_PORT: overrides share.port
//   - PARLEY_TOTP_SECRET: overrides share.admin_totp_secret
//   - PARLEY_LOG_LEVEL: overrides logging.level
//   - PARLEY_LOG_FILE: overrides logging.file
func (c *Config) ApplyEnvOverrides() {
	if source := os.Getenv("PARLEY_SOURCE"); source != "" {
		c.Chat.Source = source
	}
	if endpoint := os.Getenv("PARLEY_ENDPOINT"); endpoint != "" {
		c.Chat.EndpointURL = endpoint
	}
	if streamURL := os.Getenv("PARLEY_STREAM_URL"); streamURL != "" {
		c.Chat.StreamURL = streamURL
	}
	if theme := os.Getenv("PARLEY_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if reduced := os.Getenv("PARLEY_REDUCED_MOTION"); reduced != "" {
		c.Typing.ReducedMotion = reduced == "1" || strings.ToLower(reduced) == "true"
	}
	if backend := os.Getenv("PARLEY_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if dir := os.Getenv("PARLEY_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if shareURL := os.Getenv("PARLEY_SHARE_URL"); shareURL != "" {
		c.Share.ServerURL = shareURL
	}
	if port := os.Getenv("PARLEY_SHARE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Share.Port = p
		}
	}
	// SECURITY: env var lets the secret stay out of the config file entirely.
	if secret := os.Getenv("PARLEY_TOTP_SECRET"); secret != "" {
		c.Share.AdminTOTPSecret = secret
	}
	if level := os.Getenv("PARLEY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("PARLEY_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "typing.speed").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "typing.speed").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"chat.source",
		"chat.endpoint_url",
		"chat.stream_url",
		"chat.request_timeout_secs",
		"chat.cancel_grace_secs",
		"chat.simulated_word_delay_ms",
		"typing.speed",
		"typing.reduced_motion",
		"thinking.visible",
		"thinking.show_durations",
		"storage.backend",
		"storage.dir",
		"storage.max_sessions",
		"storage.autosave_secs",
		"export.output_dir",
		"export.include_metadata",
		"export.include_timestamps",
		"export.open_after_export",
		"share.server_url",
		"share.port",
		"share.admin_totp_secret",
		"ui.theme",
		"ui.compact_mode",
		"ui.show_timestamps",
		"logging.level",
		"logging.file",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
// SECURITY: Redacts the TOTP secret to prevent accidental exposure in logs,
// error messages, or debug output.
func (c *Config) String() string {
	safe := c.Clone()

	if safe.Share.AdminTOTPSecret != "" {
		safe.Share.AdminTOTPSecret = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
