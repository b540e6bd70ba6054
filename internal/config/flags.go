package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Flags holds values parsed from command-line flags. Only flags the user
// actually set override the configuration.
type Flags struct {
	fs *pflag.FlagSet

	ConfigFilePath  string
	LogLevel        string
	LogFilePath     string
	EnableTags      string
	DisableTags     string
	History         int
	Locale          string
	Worker          string
	Store           string
	StorePath       string
	RedisAddr       string
	AutosaveDelay   string
	SystemClipboard bool
	MetricsAddr     string
}

// DefineFlags registers the global flags on fs.
func (f *Flags) DefineFlags(fs *pflag.FlagSet) {
	f.fs = fs
	fs.StringVar(&f.ConfigFilePath, "config", "", fmt.Sprintf("Path to TOML configuration file (default <user config dir>/%s/%s)", AppName, DefaultConfigFileName))
	fs.StringVar(&f.LogLevel, "loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	fs.StringVar(&f.LogFilePath, "logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	fs.StringVar(&f.EnableTags, "log-tags", "", "Comma-separated list of tags to enable - Overrides config file")
	fs.StringVar(&f.DisableTags, "log-disable-tags", "", "Comma-separated list of tags to disable - Overrides config file")
	fs.IntVar(&f.History, "history", 0, "Undo history capacity - Overrides config file")
	fs.StringVar(&f.Locale, "locale", "", "Locale for sorting and case mapping (e.g. 'de', 'sv') - Overrides config file")
	fs.StringVar(&f.Worker, "worker", "", "Worker for offloaded transforms (local, process) - Overrides config file")
	fs.StringVar(&f.Store, "store", "", "Persistence backend (memory, file, redis) - Overrides config file")
	fs.StringVar(&f.StorePath, "store-path", "", "Directory for the file store - Overrides config file")
	fs.StringVar(&f.RedisAddr, "redis-addr", "", "Redis address for the redis store - Overrides config file")
	fs.StringVar(&f.AutosaveDelay, "autosave-delay", "", "Autosave debounce delay, '0' disables autosave - Overrides config file")
	fs.BoolVar(&f.SystemClipboard, "system-clipboard", false, "Use system clipboard instead of internal clipboard")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. ':2112')")
}

// ApplyOverrides updates cfg with the values of flags that were set.
func (f *Flags) ApplyOverrides(cfg *Config) {
	if f.fs == nil {
		return
	}
	f.fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "loglevel":
			if f.LogLevel != "" {
				cfg.Logger.LogLevel = f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = f.LogFilePath
		case "log-tags":
			if tags := splitCommaList(f.EnableTags); tags != nil {
				cfg.Logger.EnabledTags = tags
			}
		case "log-disable-tags":
			if tags := splitCommaList(f.DisableTags); tags != nil {
				cfg.Logger.DisabledTags = tags
			}
		case "history":
			if f.History > 0 {
				cfg.History.Capacity = f.History
			}
		case "locale":
			cfg.Engine.Locale = f.Locale
		case "worker":
			cfg.Engine.Worker = strings.ToLower(f.Worker)
		case "store":
			cfg.Store.Backend = f.Store
		case "store-path":
			cfg.Store.Path = f.StorePath
		case "redis-addr":
			cfg.Store.RedisAddr = f.RedisAddr
		case "autosave-delay":
			if d, err := time.ParseDuration(f.AutosaveDelay); err == nil && d == 0 {
				cfg.Autosave.Enabled = false
			} else {
				cfg.Autosave.Enabled = true
				cfg.Autosave.Delay = f.AutosaveDelay
			}
		case "system-clipboard":
			cfg.Clipboard.System = f.SystemClipboard
		case "metrics-addr":
			cfg.Metrics.Addr = f.MetricsAddr
		}
	})
}

// splitCommaList splits and trims a comma-separated list, dropping empty items.
func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
