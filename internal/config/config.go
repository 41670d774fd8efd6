// Package config implements layered configuration for termpilot.
//
// Precedence, lowest to highest: builtin defaults, user config
// (~/.termpilot/config.toml), project config (.termpilot/config.toml),
// environment (TERMPILOT_*), CLI flags (applied by the cli package).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/termpilot/termpilot/internal/catalog"
)

// GeneralConfig holds top-level settings.
type GeneralConfig struct {
	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string `mapstructure:"log_level"`
	// Output is the default output format: text, json, yaml.
	Output string `mapstructure:"output"`
	// DBPath overrides the decision-log database location.
	DBPath string `mapstructure:"db_path"`
	// Actor identifies who is driving this terminal.
	Actor string `mapstructure:"actor"`
}

// CatalogConfig lets a deployment extend or replace the builtin catalog.
type CatalogConfig struct {
	// File is an optional TOML catalog file; groups present in the file
	// replace the builtin group entirely.
	File string `mapstructure:"file"`
	// Extra* lists are appended after the builtin patterns, preserving
	// builtin first-match order.
	ExtraRequireUser []string `mapstructure:"extra_require_user"`
	ExtraAutoApprove []string `mapstructure:"extra_auto_approve"`
	ExtraAutoDecline []string `mapstructure:"extra_auto_decline"`
	ExtraCritical    []string `mapstructure:"extra_critical"`
	ExtraTriggers    []string `mapstructure:"extra_triggers"`
	ExtraPrefixes    []string `mapstructure:"extra_prefixes"`
	ExtraKeywords    []string `mapstructure:"extra_keywords"`
}

// DispatchConfig configures the command-dispatch collaborator.
type DispatchConfig struct {
	// AssistantCommand is the assistant CLI binary.
	AssistantCommand string `mapstructure:"assistant_command"`
	// ShellTimeoutSecs bounds shell command execution.
	ShellTimeoutSecs int `mapstructure:"shell_timeout_secs"`
	// LogDir receives per-command output logs; empty disables file logs.
	LogDir string `mapstructure:"log_dir"`
}

// WatchConfig configures the decision-log watcher.
type WatchConfig struct {
	// DebounceMS collapses bursts of WAL writes into one event.
	DebounceMS int `mapstructure:"debounce_ms"`
}

// SessionsConfig configures session housekeeping.
type SessionsConfig struct {
	// StaleThresholdMins marks sessions idle longer than this as stale.
	StaleThresholdMins int `mapstructure:"stale_threshold_mins"`
}

// Config is the full termpilot configuration.
type Config struct {
	General  GeneralConfig  `mapstructure:"general"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Sessions SessionsConfig `mapstructure:"sessions"`
}

// DefaultConfig returns the builtin defaults.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "info",
			Output:   "text",
		},
		Dispatch: DispatchConfig{
			AssistantCommand: "claude",
			ShellTimeoutSecs: 300,
		},
		Watch: WatchConfig{
			DebounceMS: 250,
		},
		Sessions: SessionsConfig{
			StaleThresholdMins: 240,
		},
	}
}

// Validate checks a config and returns all problems at once.
func Validate(cfg Config) error {
	var problems []string

	switch cfg.General.Output {
	case "text", "json", "yaml":
	default:
		problems = append(problems, fmt.Sprintf("general.output: unknown format %q", cfg.General.Output))
	}
	switch strings.ToLower(cfg.General.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		problems = append(problems, fmt.Sprintf("general.log_level: unknown level %q", cfg.General.LogLevel))
	}
	if cfg.Dispatch.AssistantCommand == "" {
		problems = append(problems, "dispatch.assistant_command: must not be empty")
	}
	if cfg.Dispatch.ShellTimeoutSecs <= 0 {
		problems = append(problems, "dispatch.shell_timeout_secs: must be positive")
	}
	if cfg.Watch.DebounceMS <= 0 {
		problems = append(problems, "watch.debounce_ms: must be positive")
	}
	if cfg.Sessions.StaleThresholdMins <= 0 {
		problems = append(problems, "sessions.stale_threshold_mins: must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration with full precedence. explicitPath, when
// non-empty, replaces the user+project file search.
func Load(explicitPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", explicitPath, err)
		}
	} else {
		// User config.
		if home, err := os.UserHomeDir(); err == nil {
			mergeIfExists(v, filepath.Join(home, ".termpilot", "config.toml"))
		}
		// Project config overrides user config.
		if cwd, err := os.Getwd(); err == nil {
			mergeIfExists(v, filepath.Join(cwd, ".termpilot", "config.toml"))
		}
	}

	// Env overrides files: TERMPILOT_GENERAL_LOG_LEVEL etc.
	v.SetEnvPrefix("TERMPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteValue sets a single key in a config file, creating the file and
// its directory if needed.
func WriteValue(path, key string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.Set(key, value)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// BuildCatalog resolves the effective pattern catalog: the catalog file
// (or builtin defaults) extended with the Extra* lists.
func BuildCatalog(cfg Config) (*catalog.Catalog, error) {
	base := catalog.Default()
	if cfg.Catalog.File != "" {
		loaded, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		base = loaded
	}

	return base.Extend(catalog.Groups{
		RequireUser: cfg.Catalog.ExtraRequireUser,
		AutoApprove: cfg.Catalog.ExtraAutoApprove,
		AutoDecline: cfg.Catalog.ExtraAutoDecline,
		Critical:    cfg.Catalog.ExtraCritical,
		Triggers:    cfg.Catalog.ExtraTriggers,
		Prefixes:    cfg.Catalog.ExtraPrefixes,
		Keywords:    cfg.Catalog.ExtraKeywords,
	}), nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("general.log_level", def.General.LogLevel)
	v.SetDefault("general.output", def.General.Output)
	v.SetDefault("general.db_path", def.General.DBPath)
	v.SetDefault("general.actor", def.General.Actor)
	v.SetDefault("dispatch.assistant_command", def.Dispatch.AssistantCommand)
	v.SetDefault("dispatch.shell_timeout_secs", def.Dispatch.ShellTimeoutSecs)
	v.SetDefault("dispatch.log_dir", def.Dispatch.LogDir)
	v.SetDefault("watch.debounce_ms", def.Watch.DebounceMS)
	v.SetDefault("sessions.stale_threshold_mins", def.Sessions.StaleThresholdMins)
}

func mergeIfExists(v *viper.Viper, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	v.SetConfigFile(path)
	_ = v.MergeInConfig()
}
