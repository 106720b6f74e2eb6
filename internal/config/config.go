package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Environment variables that override file settings
const (
	EnvBaseURL     = "TM_DASH_BASE_URL"
	EnvCreatePath  = "TM_DASH_CREATE_PATH"
	EnvTimeout     = "TM_DASH_TIMEOUT"
	EnvLogLevel    = "TM_DASH_LOG_LEVEL"
	EnvLogFile     = "TM_DASH_LOG_FILE"
	EnvJournal     = "TM_DASH_JOURNAL"
	EnvJournalPath = "TM_DASH_JOURNAL_PATH"
	EnvDefaultView = "TM_DASH_VIEW"
)

// appDirName is the directory under the user config dir
const appDirName = "tm-dash"

// Config represents the client configuration
type Config struct {
	BaseURL        string            `json:"baseUrl" env:"TM_DASH_BASE_URL"`
	CreatePath     string            `json:"createPath" env:"TM_DASH_CREATE_PATH"`
	RequestTimeout string            `json:"requestTimeout" env:"TM_DASH_TIMEOUT"`
	LogLevel       string            `json:"logLevel" env:"TM_DASH_LOG_LEVEL"`
	LogPath        string            `json:"logPath" env:"TM_DASH_LOG_FILE"`
	JournalBackend string            `json:"journalBackend" env:"TM_DASH_JOURNAL"`
	JournalPath    string            `json:"journalPath" env:"TM_DASH_JOURNAL_PATH"`
	StatePath      string            `json:"statePath"`
	Projects       []ProjectSeed     `json:"projects"`
	KeyBindings    map[string]string `json:"keyBindings"`
	Theme          ThemeConfig       `json:"theme"`
	UI             UIConfig          `json:"ui"`

	// ConfigPath is the file the config was loaded from, if any
	ConfigPath string `json:"-"`
}

// ProjectSeed names a project shown in the sidebar
type ProjectSeed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ThemeConfig defines color and styling options
type ThemeConfig struct {
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
	SuccessColor string `json:"successColor"`
	ErrorColor   string `json:"errorColor"`
	WarningColor string `json:"warningColor"`
}

// UIConfig defines UI behavior settings
type UIConfig struct {
	DefaultView string `json:"defaultView" env:"TM_DASH_VIEW"`
	ShowSidebar *bool  `json:"showSidebar,omitempty"`
}

// SidebarVisible reports whether the sidebar starts visible
func (u UIConfig) SidebarVisible() bool {
	return u.ShowSidebar == nil || *u.ShowSidebar
}

// UIState represents the persisted TUI state between sessions
type UIState struct {
	View       string `json:"view"`
	Search     string `json:"search"`
	SelectedID string `json:"selectedId,omitempty"`
}

// Timeout returns the parsed request timeout, 10s when unset or invalid
func (c *Config) Timeout() time.Duration {
	if c == nil || strings.TrimSpace(c.RequestTimeout) == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.RequestTimeout))
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Validate checks settings that would make the client unusable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base URL is empty")
	}
	if c.RequestTimeout != "" {
		if d, err := time.ParseDuration(c.RequestTimeout); err != nil || d <= 0 {
			return fmt.Errorf("invalid request timeout %q", c.RequestTimeout)
		}
	}
	switch strings.ToLower(c.JournalBackend) {
	case "", "badger", "file", "memory":
	default:
		return fmt.Errorf("unknown journal backend %q", c.JournalBackend)
	}
	return nil
}

// DefaultDir returns the directory holding config, state, journal and logs
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName)
	}
	return filepath.Join(".", "."+appDirName)
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.json")
}

// Load builds the configuration: defaults, then the config file at path
// (or the default location when path is empty), then environment overrides.
// A missing default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := defaultConfig(DefaultDir())

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		if err := mergeConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.ConfigPath = path
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigFile loads a config file and merges its values into the target config
func mergeConfigFile(target *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var partial Config
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Merge non-zero values from partial into target
	target.BaseURL = pick(partial.BaseURL, target.BaseURL)
	target.CreatePath = pick(partial.CreatePath, target.CreatePath)
	target.RequestTimeout = pick(partial.RequestTimeout, target.RequestTimeout)
	target.LogLevel = pick(partial.LogLevel, target.LogLevel)
	target.LogPath = pick(partial.LogPath, target.LogPath)
	target.JournalBackend = pick(partial.JournalBackend, target.JournalBackend)
	target.JournalPath = pick(partial.JournalPath, target.JournalPath)
	target.StatePath = pick(partial.StatePath, target.StatePath)

	if len(partial.Projects) > 0 {
		target.Projects = partial.Projects
	}

	if target.KeyBindings == nil {
		target.KeyBindings = make(map[string]string)
	}
	for key, value := range partial.KeyBindings {
		target.KeyBindings[key] = value
	}

	target.Theme.PrimaryColor = pick(partial.Theme.PrimaryColor, target.Theme.PrimaryColor)
	target.Theme.AccentColor = pick(partial.Theme.AccentColor, target.Theme.AccentColor)
	target.Theme.SuccessColor = pick(partial.Theme.SuccessColor, target.Theme.SuccessColor)
	target.Theme.ErrorColor = pick(partial.Theme.ErrorColor, target.Theme.ErrorColor)
	target.Theme.WarningColor = pick(partial.Theme.WarningColor, target.Theme.WarningColor)

	target.UI.DefaultView = pick(partial.UI.DefaultView, target.UI.DefaultView)
	if partial.UI.ShowSidebar != nil {
		target.UI.ShowSidebar = partial.UI.ShowSidebar
	}

	return nil
}

func pick(override, current string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return current
}

// defaultConfig returns the default configuration rooted at dir
func defaultConfig(dir string) *Config {
	return &Config{
		BaseURL:        "http://127.0.0.1:8000/api",
		CreatePath:     "/tasks/",
		RequestTimeout: "10s",
		LogLevel:       "info",
		LogPath:        filepath.Join(dir, "tm-dash.log"),
		JournalBackend: "badger",
		JournalPath:    filepath.Join(dir, "journal"),
		StatePath:      filepath.Join(dir, "state.json"),
		Projects: []ProjectSeed{
			{ID: "school", Name: "School"},
			{ID: "home", Name: "Home"},
			{ID: "random", Name: "Random"},
			{ID: "friends", Name: "Friends"},
		},
		KeyBindings: map[string]string{
			"quit":    "q",
			"help":    "?",
			"refresh": "r",
			"search":  "/",
			"add":     "a",
			"toggle":  " ",
			"delete":  "x",
		},
		Theme: ThemeConfig{
			PrimaryColor: "#7d56f4",
			AccentColor:  "#F780E2",
			SuccessColor: "#04B575",
			ErrorColor:   "#EF4146",
			WarningColor: "#FF9800",
		},
		UI: UIConfig{
			DefaultView: "today",
		},
	}
}

// ConfigManager handles configuration with file watching capabilities
type ConfigManager struct {
	config     *Config
	path       string
	watcher    *Watcher
	reloadChan chan struct{}
	errChan    chan error
	override   func(*Config)
	mu         sync.RWMutex
}

// NewConfigManager loads the configuration and prepares hot reload
func NewConfigManager(path string) (*ConfigManager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	return &ConfigManager{
		config:     cfg,
		path:       path,
		reloadChan: make(chan struct{}, 1),
		errChan:    make(chan error, 1),
	}, nil
}

// NewStaticManager wraps an already built config; it never reloads
func NewStaticManager(cfg *Config) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		reloadChan: make(chan struct{}, 1),
		errChan:    make(chan error, 1),
	}
}

// GetConfig returns the current configuration (thread-safe)
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// SetOverride installs a hook applied to the current config and to every
// reloaded one, so command-line flags survive hot reload
func (cm *ConfigManager) SetOverride(fn func(*Config)) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.override = fn
	if fn == nil {
		return nil
	}
	fn(cm.config)
	return cm.config.Validate()
}

// Reload loads the configuration from disk
func (cm *ConfigManager) Reload() error {
	cfg, err := Load(cm.path)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	cm.mu.Lock()
	if cm.override != nil {
		cm.override(cfg)
	}
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// StartWatcher begins watching the config file for changes with a 300ms debounce
func (cm *ConfigManager) StartWatcher(ctx context.Context) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher != nil {
		return fmt.Errorf("watcher already started")
	}

	path := cm.config.ConfigPath
	if path == "" {
		return fmt.Errorf("no config file to watch")
	}

	watcher, err := NewWatcher(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Start(300 * time.Millisecond); err != nil {
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	cm.watcher = watcher

	go cm.handleConfigChanges(ctx, watcher)
	return nil
}

// handleConfigChanges processes config file change notifications
func (cm *ConfigManager) handleConfigChanges(ctx context.Context, watcher *Watcher) {
	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-watcher.Events():
			if !ok {
				return
			}
			if err := cm.Reload(); err != nil {
				cm.reportError(err)
				continue
			}
			select {
			case cm.reloadChan <- struct{}{}:
			default:
				// Channel full, reload notification already pending
			}

		case err, ok := <-watcher.Errors():
			if !ok {
				return
			}
			cm.reportError(err)
		}
	}
}

func (cm *ConfigManager) reportError(err error) {
	select {
	case cm.errChan <- err:
	default:
	}
}

// StopWatcher stops the config file watcher if it's running
func (cm *ConfigManager) StopWatcher() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher == nil {
		return nil
	}
	err := cm.watcher.Stop()
	cm.watcher = nil
	return err
}

// ReloadEvents returns a channel that signals when config has been reloaded
func (cm *ConfigManager) ReloadEvents() <-chan struct{} {
	return cm.reloadChan
}

// Errors returns a channel of reload and watcher errors
func (cm *ConfigManager) Errors() <-chan error {
	return cm.errChan
}

// SaveState persists the UI state to disk
func SaveState(statePath string, state *UIState) error {
	if statePath == "" {
		return fmt.Errorf("state path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write state file with user-only permissions
	if err := os.WriteFile(statePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// LoadState loads the UI state from disk. A missing file yields an empty state.
func LoadState(statePath string) (*UIState, error) {
	if statePath == "" {
		return nil, fmt.Errorf("state path is empty")
	}

	data, err := os.ReadFile(statePath)
	if os.IsNotExist(err) {
		return &UIState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state UIState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return &state, nil
}
