package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets every override so tests see only file values
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvBaseURL, EnvCreatePath, EnvTimeout, EnvLogLevel,
		EnvLogFile, EnvJournal, EnvJournalPath, EnvDefaultView,
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "http://127.0.0.1:8000/api" {
		t.Errorf("Expected default base URL, got %q", cfg.BaseURL)
	}
	if cfg.CreatePath != "/tasks/" {
		t.Errorf("Expected default create path, got %q", cfg.CreatePath)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %v", cfg.Timeout())
	}
	if len(cfg.Projects) != 4 {
		t.Errorf("Expected 4 default projects, got %d", len(cfg.Projects))
	}
	if cfg.ConfigPath != "" {
		t.Errorf("Expected no config path without a file, got %q", cfg.ConfigPath)
	}
	if !cfg.UI.SidebarVisible() {
		t.Error("Expected sidebar visible by default")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}

func TestMergeConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"baseUrl": "http://tasks.local/api",
		"createPath": "/tasks/create/",
		"requestTimeout": "3s",
		"projects": [{"id": "work", "name": "Work"}],
		"keyBindings": {"quit": "ctrl+q"},
		"theme": {"primaryColor": "#000000"},
		"ui": {"defaultView": "inbox", "showSidebar": false}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BaseURL != "http://tasks.local/api" {
		t.Errorf("BaseURL mismatch: %q", cfg.BaseURL)
	}
	if cfg.CreatePath != "/tasks/create/" {
		t.Errorf("CreatePath mismatch: %q", cfg.CreatePath)
	}
	if cfg.Timeout() != 3*time.Second {
		t.Errorf("Timeout mismatch: %v", cfg.Timeout())
	}
	if len(cfg.Projects) != 1 || cfg.Projects[0].ID != "work" {
		t.Errorf("Projects not replaced: %+v", cfg.Projects)
	}
	if cfg.KeyBindings["quit"] != "ctrl+q" {
		t.Errorf("quit binding not merged: %q", cfg.KeyBindings["quit"])
	}
	if cfg.KeyBindings["help"] != "?" {
		t.Errorf("Default help binding lost: %q", cfg.KeyBindings["help"])
	}
	if cfg.Theme.PrimaryColor != "#000000" {
		t.Errorf("PrimaryColor mismatch: %q", cfg.Theme.PrimaryColor)
	}
	if cfg.Theme.AccentColor == "" {
		t.Error("Default accent color lost")
	}
	if cfg.UI.DefaultView != "inbox" {
		t.Errorf("DefaultView mismatch: %q", cfg.UI.DefaultView)
	}
	if cfg.UI.SidebarVisible() {
		t.Error("Expected sidebar hidden")
	}
	if cfg.ConfigPath != path {
		t.Errorf("ConfigPath mismatch: %q", cfg.ConfigPath)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"baseUrl": "http://file/api", "journalBackend": "file"}`)

	t.Setenv(EnvBaseURL, "http://env/api")
	t.Setenv(EnvJournal, "memory")
	t.Setenv(EnvDefaultView, "completed")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "http://env/api" {
		t.Errorf("Expected env base URL, got %q", cfg.BaseURL)
	}
	if cfg.JournalBackend != "memory" {
		t.Errorf("Expected env journal backend, got %q", cfg.JournalBackend)
	}
	if cfg.UI.DefaultView != "completed" {
		t.Errorf("Expected env default view, got %q", cfg.UI.DefaultView)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{not json`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty base url", func(c *Config) { c.BaseURL = " " }, true},
		{"bad timeout", func(c *Config) { c.RequestTimeout = "soon" }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = "-1s" }, true},
		{"unknown backend", func(c *Config) { c.JournalBackend = "sqlite" }, true},
		{"file backend", func(c *Config) { c.JournalBackend = "file" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTimeout_Fallback(t *testing.T) {
	var nilCfg *Config
	if nilCfg.Timeout() != 10*time.Second {
		t.Errorf("nil config should fall back to 10s")
	}
	cfg := &Config{RequestTimeout: "garbage"}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("invalid timeout should fall back to 10s, got %v", cfg.Timeout())
	}
}

func TestState(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "nested", "state.json")

	t.Run("missing state is empty", func(t *testing.T) {
		state, err := LoadState(statePath)
		if err != nil {
			t.Fatalf("Expected no error for missing file, got: %v", err)
		}
		if state.View != "" || state.Search != "" {
			t.Errorf("Expected empty state, got %+v", state)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		want := &UIState{View: "project-home", Search: "milk", SelectedID: "7"}
		if err := SaveState(statePath, want); err != nil {
			t.Fatalf("Failed to save state: %v", err)
		}

		info, err := os.Stat(statePath)
		if err != nil {
			t.Fatalf("State file missing: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
		}

		got, err := LoadState(statePath)
		if err != nil {
			t.Fatalf("Failed to load state: %v", err)
		}
		if *got != *want {
			t.Errorf("State mismatch: got %+v, want %+v", got, want)
		}
	})

	t.Run("corrupt state", func(t *testing.T) {
		if err := os.WriteFile(statePath, []byte("{"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadState(statePath); err == nil {
			t.Error("Expected error for corrupt state")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if err := SaveState("", &UIState{}); err == nil {
			t.Error("Expected error for empty path")
		}
	})
}

func TestConfigManager_Reload(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"baseUrl": "http://one/api"}`)

	cm, err := NewConfigManager(path)
	if err != nil {
		t.Fatalf("NewConfigManager failed: %v", err)
	}
	if got := cm.GetConfig().BaseURL; got != "http://one/api" {
		t.Fatalf("Unexpected base URL %q", got)
	}

	if err := os.WriteFile(path, []byte(`{"baseUrl": "http://two/api"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := cm.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := cm.GetConfig().BaseURL; got != "http://two/api" {
		t.Errorf("Expected reloaded base URL, got %q", got)
	}
}

func TestConfigManager_OverrideSurvivesReload(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"baseUrl": "http://one/api", "logLevel": "warn"}`)

	cm, err := NewConfigManager(path)
	if err != nil {
		t.Fatalf("NewConfigManager failed: %v", err)
	}
	if err := cm.SetOverride(func(c *Config) { c.BaseURL = "http://flag/api" }); err != nil {
		t.Fatalf("SetOverride failed: %v", err)
	}
	if got := cm.GetConfig().BaseURL; got != "http://flag/api" {
		t.Fatalf("Override not applied, got %q", got)
	}

	if err := os.WriteFile(path, []byte(`{"baseUrl": "http://two/api", "logLevel": "debug"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := cm.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	cfg := cm.GetConfig()
	if cfg.BaseURL != "http://flag/api" {
		t.Errorf("Override lost on reload, got %q", cfg.BaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected file change to apply, got %q", cfg.LogLevel)
	}

	if err := cm.SetOverride(func(c *Config) { c.BaseURL = "" }); err == nil {
		t.Error("Expected validation error for an empty base URL override")
	}
}

func TestConfigManager_StaticHasNothingToWatch(t *testing.T) {
	cm := NewStaticManager(defaultConfig(t.TempDir()))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := cm.StartWatcher(ctx); err == nil {
		t.Error("Expected error watching without a config file")
	}
	if err := cm.StopWatcher(); err != nil {
		t.Errorf("StopWatcher on idle manager: %v", err)
	}
}
