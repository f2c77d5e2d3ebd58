// Package config loads keycycle settings and the declared mapping layouts.
//
// Sources, lowest priority first: built-in defaults, the YAML config file,
// a .env file in the working directory, and KEYCYCLE_* environment variables.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bezmoradi/keycycle/internal/hotkeys"
)

const (
	configFileName = "config.yaml"
	configDirName  = "keycycle"
	metricsSubDir  = "metrics"
	envPrefix      = "KEYCYCLE"
	configPathEnv  = "KEYCYCLE_CONFIG"

	DefaultCycleKey   = "ctrl+alt+m"
	DefaultRemoteAddr = "127.0.0.1:47800"
	DefaultQueueSize  = 16
)

// Config represents the application configuration
type Config struct {
	CycleKey       string          `mapstructure:"cycle_key"`
	InitialMapping string          `mapstructure:"initial_mapping"`
	QueueSize      int             `mapstructure:"queue_size"`
	Feedback       FeedbackConfig  `mapstructure:"feedback"`
	Remote         RemoteConfig    `mapstructure:"remote"`
	Metrics        MetricsConfig   `mapstructure:"metrics"`
	Persistent     []HotkeyConfig  `mapstructure:"persistent"`
	Mappings       []MappingConfig `mapstructure:"mappings"`

	// Path is the file the settings were read from, empty when none exists.
	Path string `mapstructure:"-"`
}

type FeedbackConfig struct {
	Beep   bool `mapstructure:"beep"`
	Notify bool `mapstructure:"notify"`
}

type RemoteConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// HotkeyConfig declares one hotkey bound to a registered action.
type HotkeyConfig struct {
	Label  string   `mapstructure:"label"`
	Keys   string   `mapstructure:"keys"`
	Action string   `mapstructure:"action"`
	Args   []string `mapstructure:"args"`
}

// MappingConfig declares one named mapping. Mappings are a list so the file
// order becomes the alias order.
type MappingConfig struct {
	Alias   string         `mapstructure:"alias"`
	Hotkeys []HotkeyConfig `mapstructure:"hotkeys"`
}

// getConfigDir returns the user's config directory for keycycle
func getConfigDir() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, ".config", configDirName), nil
}

// GetConfigPath returns the config file path. KEYCYCLE_CONFIG overrides the
// default location.
func GetConfigPath() (string, error) {
	if path := os.Getenv(configPathEnv); path != "" {
		return path, nil
	}
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// GetMetricsDir returns the directory for stored usage statistics.
func (c *Config) GetMetricsDir() (string, error) {
	if c.Metrics.Dir != "" {
		return c.Metrics.Dir, nil
	}
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, metricsSubDir), nil
}

// Load reads the configuration. A missing config file is not an error.
func Load() (*Config, error) {
	// .env is optional; it never overrides variables already set.
	_ = godotenv.Load()

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("cycle_key", DefaultCycleKey)
	v.SetDefault("initial_mapping", "")
	v.SetDefault("queue_size", DefaultQueueSize)
	v.SetDefault("feedback.beep", true)
	v.SetDefault("feedback.notify", false)
	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.addr", DefaultRemoteAddr)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.dir", "")

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	found := false
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
		found = true
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if found {
		cfg.Path = configPath
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	key, err := hotkeys.Normalize(c.CycleKey)
	if err != nil {
		return fmt.Errorf("cycle_key: %w", err)
	}
	c.CycleKey = key

	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.Remote.Addr == "" {
		c.Remote.Addr = DefaultRemoteAddr
	}
	return nil
}
