// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}
	if cfg.Chat.Source != "simulated" {
		t.Errorf("Expected default chat source 'simulated', got '%s'", cfg.Chat.Source)
	}
	if cfg.Typing.Speed != 30 {
		t.Errorf("Expected default typing speed 30, got %d", cfg.Typing.Speed)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("Expected default storage backend 'file', got '%s'", cfg.Storage.Backend)
	}
	if cfg.Share.Port == 0 {
		t.Error("Default config should have a share port")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid chat source",
			mutate:  func(c *Config) { c.Chat.Source = "telepathy" },
			wantErr: true,
		},
		{
			name: "network source without any endpoint",
			mutate: func(c *Config) {
				c.Chat.Source = "network"
			},
			wantErr: true,
		},
		{
			name: "network source with stream endpoint",
			mutate: func(c *Config) {
				c.Chat.Source = "network"
				c.Chat.StreamURL = "http://127.0.0.1:9000/v1/stream"
			},
			wantErr: false,
		},
		{
			name:    "malformed endpoint URL",
			mutate:  func(c *Config) { c.Chat.EndpointURL = "not a url" },
			wantErr: true,
		},
		{
			name:    "typing speed zero",
			mutate:  func(c *Config) { c.Typing.Speed = 0 },
			wantErr: true,
		},
		{
			name:    "typing speed above maximum",
			mutate:  func(c *Config) { c.Typing.Speed = 500 },
			wantErr: true,
		},
		{
			name:    "typing speed at maximum (120)",
			mutate:  func(c *Config) { c.Typing.Speed = 120 },
			wantErr: false,
		},
		{
			name:    "invalid storage backend",
			mutate:  func(c *Config) { c.Storage.Backend = "cloud" },
			wantErr: true,
		},
		{
			name:    "max sessions zero",
			mutate:  func(c *Config) { c.Storage.MaxSessions = 0 },
			wantErr: true,
		},
		{
			name:    "autosave disabled is valid",
			mutate:  func(c *Config) { c.Storage.AutosaveSecs = 0 },
			wantErr: false,
		},
		{
			name:    "autosave below minimum",
			mutate:  func(c *Config) { c.Storage.AutosaveSecs = 2 },
			wantErr: true,
		},
		{
			name:    "share port out of range",
			mutate:  func(c *Config) { c.Share.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid theme",
			mutate:  func(c *Config) { c.UI.Theme = "neon" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: true,
		},
		{
			name:    "cancel grace negative",
			mutate:  func(c *Config) { c.Chat.CancelGraceSecs = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_SetDefaults tests that zero values are filled in.
func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.Chat.Source != "simulated" {
		t.Errorf("Chat.Source = '%s', want 'simulated'", cfg.Chat.Source)
	}
	if cfg.Typing.Speed != 30 {
		t.Errorf("Typing.Speed = %d, want 30", cfg.Typing.Speed)
	}
	if cfg.Storage.MaxSessions != 50 {
		t.Errorf("Storage.MaxSessions = %d, want 50", cfg.Storage.MaxSessions)
	}
	if cfg.Share.Port != 8790 {
		t.Errorf("Share.Port = %d, want 8790", cfg.Share.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = '%s', want 'info'", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config after SetDefaults should validate: %v", err)
	}
}

// TestConfig_Migrate tests migration of legacy values.
func TestConfig_Migrate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		theme  string
		wantSource string
		wantTheme  string
	}{
		{"mock becomes simulated", "mock", "dark", "simulated", "dark"},
		{"local becomes simulated", "local", "dark", "simulated", "dark"},
		{"sse becomes network", "sse", "dark", "network", "dark"},
		{"http becomes network", "http", "dark", "network", "dark"},
		{"capitalized theme lowered", "simulated", "Dark", "simulated", "dark"},
		{"current values untouched", "network", "light", "network", "light"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Chat.Source = tt.source
			cfg.UI.Theme = tt.theme
			cfg.Migrate()

			if cfg.Chat.Source != tt.wantSource {
				t.Errorf("Chat.Source = '%s', want '%s'", cfg.Chat.Source, tt.wantSource)
			}
			if cfg.UI.Theme != tt.wantTheme {
				t.Errorf("UI.Theme = '%s', want '%s'", cfg.UI.Theme, tt.wantTheme)
			}
		})
	}
}

// TestConfig_ApplyEnvOverrides tests environment variable overrides.
func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("PARLEY_THEME", "light")
	t.Setenv("PARLEY_SOURCE", "network")
	t.Setenv("PARLEY_STREAM_URL", "http://127.0.0.1:9000/v1/stream")
	t.Setenv("PARLEY_REDUCED_MOTION", "true")
	t.Setenv("PARLEY_SHARE_PORT", "9999")
	t.Setenv("PARLEY_TOTP_SECRET", "JBSWY3DPEHPK3PXP")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = '%s', want 'light'", cfg.UI.Theme)
	}
	if cfg.Chat.Source != "network" {
		t.Errorf("Chat.Source = '%s', want 'network'", cfg.Chat.Source)
	}
	if cfg.Chat.StreamURL != "http://127.0.0.1:9000/v1/stream" {
		t.Errorf("Chat.StreamURL = '%s'", cfg.Chat.StreamURL)
	}
	if !cfg.Typing.ReducedMotion {
		t.Error("Typing.ReducedMotion should be true")
	}
	if cfg.Share.Port != 9999 {
		t.Errorf("Share.Port = %d, want 9999", cfg.Share.Port)
	}
	if cfg.Share.AdminTOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Error("AdminTOTPSecret should come from the environment")
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("chat.source")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "simulated" {
		t.Errorf("Get('chat.source') = %v, want 'simulated'", val)
	}

	// Set with string conversion to int
	if err := cfg.Set("typing.speed", "45"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("typing.speed")
	if val != 45 {
		t.Errorf("Get('typing.speed') after Set = %v, want 45", val)
	}

	// Set with string conversion to bool
	if err := cfg.Set("typing.reduced_motion", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("typing.reduced_motion")
	if val != true {
		t.Errorf("Get('typing.reduced_motion') after Set = %v, want true", val)
	}

	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}
	if err := cfg.Set("chat.nonsense", "x"); err == nil {
		t.Error("Set() with invalid key should return error")
	}
}

// TestConfig_SaveLoadRoundTrip tests TOML save and reload.
func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.UI.Theme = "light"
	cfg.Typing.Speed = 60
	cfg.Storage.Backend = "sqlite"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	// SECURITY: saved config must be owner-only
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("Theme = '%s', want 'light'", loaded.UI.Theme)
	}
	if loaded.Typing.Speed != 60 {
		t.Errorf("Speed = %d, want 60", loaded.Typing.Speed)
	}
	if loaded.Storage.Backend != "sqlite" {
		t.Errorf("Backend = '%s', want 'sqlite'", loaded.Storage.Backend)
	}
}

// TestConfig_LoadFixesLaxPermissions tests that loading tightens file modes.
func TestConfig_LoadFixesLaxPermissions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := os.WriteFile(path, []byte("version = \"1.0.0\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions after load = %o, want 0600", perm)
	}
}

// TestConfig_StringRedactsSecret tests that debug output hides the TOTP secret.
func TestConfig_StringRedactsSecret(t *testing.T) {
	cfg := Default()
	cfg.Share.AdminTOTPSecret = "JBSWY3DPEHPK3PXP"

	out := cfg.String()
	if strings.Contains(out, "JBSWY3DPEHPK3PXP") {
		t.Error("String() must not expose the TOTP secret")
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Error("String() should mark the secret as redacted")
	}

	// Original must be untouched
	if cfg.Share.AdminTOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Error("String() must not mutate the config")
	}
}

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and
// ReloadGlobal() can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "concurrent-test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if cfg := Global(); cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestWatcher_PollingReloadsOnChange tests the polling fallback watcher.
func TestWatcher_PollingReloadsOnChange(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	reloaded := make(chan *Config, 4)
	pw := NewPollingWatcher(path, 30*time.Millisecond, func(c *Config) {
		reloaded <- c
	})
	if err := pw.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer pw.Close()

	// RELIABILITY: coarse mtime resolution on some filesystems means the
	// change must land measurably after the initial save.
	time.Sleep(50 * time.Millisecond)

	cfg.UI.Theme = "light"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("second SaveTOML() error = %v", err)
	}

	select {
	case got := <-reloaded:
		if got.UI.Theme != "light" {
			t.Errorf("reloaded theme = '%s', want 'light'", got.UI.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the config change")
	}
}

// TestWatcher_IgnoresInvalidConfig tests that a broken config on disk does
// not reach the reload callback.
func TestWatcher_IgnoresInvalidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	reloaded := make(chan *Config, 4)
	pw := NewPollingWatcher(path, 30*time.Millisecond, func(c *Config) {
		reloaded <- c
	})
	if err := pw.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer pw.Close()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("this is not toml {{{"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case <-reloaded:
		t.Error("broken config should not trigger a reload")
	case <-time.After(500 * time.Millisecond):
		// expected: no reload
	}
}
