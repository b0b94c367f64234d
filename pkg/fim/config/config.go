package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/fim/pkg/fim/logging"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" yaml:"max_size"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Daily      bool   `mapstructure:"daily" yaml:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation" yaml:"rotation"`
	Components map[string]string `mapstructure:"components" yaml:"components"`
}

// JournalConfig configures the operation history.
type JournalConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Path          string `mapstructure:"path" yaml:"path"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Baseline string        `mapstructure:"baseline" yaml:"baseline"`
	Exclude  []string      `mapstructure:"exclude" yaml:"exclude"`
	Workers  int           `mapstructure:"workers" yaml:"workers"`
	Format   string        `mapstructure:"format" yaml:"format"`
	Journal  JournalConfig `mapstructure:"journal" yaml:"journal"`
	Logging  LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Setup prepares v with fim's defaults, config search paths, and FIM_
// environment binding. A non-empty configFile replaces the search paths.
//
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/fim/config.yaml
//   - $HOME/.config/fim/config.yaml
func Setup(v *viper.Viper, configFile string) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, "fim"))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "fim"))
		}
	}

	v.SetEnvPrefix("FIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("baseline", DefaultBaseline)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("format", DefaultFormat)

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "") // Empty means DefaultJournalPath
	v.SetDefault("journal.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty means DefaultLogPath
	v.SetDefault("logging.rotation.max_size", DefaultMaxLogSize)
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", DefaultComponentLevels)
}

// Read reads the config file into v. A missing file, searched for or named
// explicitly, is not an error.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Decode unmarshals v into a Config and expands ~ in paths.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.Baseline, &cfg.Journal.Path, &cfg.Logging.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	if cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath()
	}
	return &cfg, nil
}

// Load loads configuration from file and environment variables using a
// private viper instance.
func Load() (*Config, error) {
	v := viper.New()
	Setup(v, "")
	if err := Read(v); err != nil {
		return nil, err
	}
	return Decode(v)
}

// LoggingSettings converts the logging section into a logging.Config.
// Invalid or empty sizes fall back to the default rotation size.
func (c *Config) LoggingSettings() logging.Config {
	return logging.Config{
		Level:      c.Logging.Level,
		Path:       c.Logging.Path,
		Rotation:   ParseRotation(c.Logging.Rotation),
		Components: c.Logging.Components,
	}
}

// ParseRotation converts a RotationConfig into logging.RotationConfig.
func ParseRotation(rc RotationConfig) logging.RotationConfig {
	out := logging.DefaultRotationConfig()
	out.MaxAge = rc.MaxAge
	out.MaxBackups = rc.MaxBackups
	out.Daily = rc.Daily

	if size, err := ParseSize(rc.MaxSize); err == nil && size > 0 {
		out.MaxSize = size
	}
	return out
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "fim"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "fim"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns $XDG_DATA_HOME/fim/ for the journal.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "fim")
}

// StateDir returns $XDG_STATE_HOME/fim/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "fim")
}

// DefaultJournalPath returns the default journal directory.
func DefaultJournalPath() string {
	return filepath.Join(DataDir(), "journal")
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// WriteDefault writes a commented default config file to path. It returns
// false without error if the file already exists.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# fim configuration

# Baseline file; relative paths resolve against the working directory
baseline: %s

# Paths or glob patterns skipped while enumerating
exclude: []

# Directory walker workers (0 = number of CPUs)
workers: %d

# Default check report format: pretty, plain, json, yaml, markdown, paths, null
format: %s

# Operation history
journal:
  enabled: true
  # Empty means use default: $XDG_DATA_HOME/fim/journal
  path: ""
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means use default: $XDG_STATE_HOME/fim/fim.log)
  path: ""
  rotation:
    max_size: %s
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    digest: warn
    enumerate: info
    journal: info
`, DefaultBaseline, DefaultWorkers, DefaultFormat, DefaultRetentionDays, DefaultLogLevel, DefaultMaxLogSize)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
