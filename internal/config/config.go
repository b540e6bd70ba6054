// Package config loads textforge settings from defaults, a TOML file and
// command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/textforge/internal/autosave"
	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/metrics"
	"github.com/bethropolis/textforge/internal/store"
	"github.com/bethropolis/textforge/internal/transform"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger    logger.Config   `toml:"logger"`
	Engine    EngineConfig    `toml:"engine"`
	History   HistoryConfig   `toml:"history"`
	Autosave  autosave.Config `toml:"autosave"`
	Store     store.Config    `toml:"store"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	Metrics   metrics.Config  `toml:"metrics"`
}

// EngineConfig holds transformation settings.
type EngineConfig struct {
	Locale  string `toml:"locale"`  // BCP 47 tag for sorting and case mapping; empty is root
	Offload bool   `toml:"offload"` // run shell transforms on the worker
	Worker  string `toml:"worker"`  // "local" or "process"
}

// HistoryConfig holds undo settings.
type HistoryConfig struct {
	Capacity int `toml:"capacity"`
}

// ClipboardConfig holds clipboard settings.
type ClipboardConfig struct {
	System bool `toml:"system"`
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			LogLevel:    DefaultLogLevel,
			LogFilePath: "",
		},
		Engine: EngineConfig{
			Worker: WorkerLocal,
		},
		History: HistoryConfig{
			Capacity: DefaultHistoryCapacity,
		},
		Autosave: autosave.Config{
			Enabled: true,
			Delay:   DefaultAutosaveDelay.String(),
			Key:     DefaultAutosaveKey,
		},
		Store: store.Config{
			Backend: DefaultStoreBackend,
			Path:    DefaultStorePath(),
			Prefix:  DefaultRedisPrefix,
		},
		Clipboard: ClipboardConfig{
			System: SystemClipboard,
		},
	}
}

// DefaultConfigPath returns the config file location under the user config
// directory, or "" if it cannot be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// DefaultStorePath returns the file store directory under the user data
// directory, falling back to a relative directory.
func DefaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return store.DefaultDir
	}
	return filepath.Join(dir, AppName, DefaultStoreDirName)
}

// loadFromFile decodes filePath over cfg. A missing file is not an error.
func loadFromFile(filePath string, cfg *Config) error {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		// Reported after the logger is initialized.
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		pendingWarnings = append(pendingWarnings, fmt.Sprintf("Config file '%s': Unrecognized keys: %s", filePath, strings.Join(keys, ", ")))
	}
	return nil
}

var pendingWarnings []string

// ReportWarnings logs problems found while loading. Call it once the logger
// is initialized.
func ReportWarnings() {
	for _, w := range pendingWarnings {
		logger.Warnf("%s", w)
	}
	pendingWarnings = nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}

	if _, err := transform.ParseLocale(c.Engine.Locale); err != nil {
		pendingWarnings = append(pendingWarnings, fmt.Sprintf("Invalid engine locale '%s', using root collation", c.Engine.Locale))
		c.Engine.Locale = defaults.Engine.Locale
	}
	switch c.Engine.Worker {
	case WorkerLocal, WorkerProcess:
	default:
		c.Engine.Worker = defaults.Engine.Worker
	}

	if c.History.Capacity <= 0 {
		c.History.Capacity = defaults.History.Capacity
	}

	if c.Autosave.Key == "" {
		c.Autosave.Key = defaults.Autosave.Key
	}
	if c.Autosave.Delay == "" {
		c.Autosave.Delay = defaults.Autosave.Delay
	}

	c.Store.Backend = strings.ToLower(c.Store.Backend)
	switch c.Store.Backend {
	case store.BackendMemory, store.BackendFile, store.BackendRedis:
	default:
		pendingWarnings = append(pendingWarnings, fmt.Sprintf("Unknown store backend '%s', using '%s'", c.Store.Backend, defaults.Store.Backend))
		c.Store.Backend = defaults.Store.Backend
	}
	if c.Store.Path == "" {
		c.Store.Path = defaults.Store.Path
	}
	if c.Store.Prefix == "" {
		c.Store.Prefix = defaults.Store.Prefix
	}
}

// Load builds a configuration from defaults, the file at configFilePath (or
// the default location when empty) and the flags that were explicitly set.
func Load(configFilePath string, flags *Flags) (*Config, error) {
	cfg := NewDefaultConfig()

	effectivePath := configFilePath
	if effectivePath == "" {
		effectivePath = DefaultConfigPath()
	}

	var err error
	if effectivePath != "" {
		err = loadFromFile(effectivePath, cfg)
	}

	if flags != nil {
		flags.ApplyOverrides(cfg)
	}

	cfg.validate()
	return cfg, err
}

// LoadConfig loads the process-wide configuration once. It should be called
// only from the command entry point.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	loadOnce.Do(func() {
		loadedConfig, loadErr = Load(configFilePath, flags)
	})
	return loadedConfig, loadErr
}

// Get returns the loaded application configuration. Panics if LoadConfig wasn't called.
func Get() *Config {
	if loadedConfig == nil {
		panic("config.Get() called before config.LoadConfig()")
	}
	return loadedConfig
}
