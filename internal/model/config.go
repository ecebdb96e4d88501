package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/nhle/bmattach/internal/attachment"
)

// AttachmentsConfig holds the size thresholds and save behaviour for
// embedded attachments.
type AttachmentsConfig struct {
	// WarnKB is the size above which the user must confirm an attachment.
	WarnKB float64 `mapstructure:"warn_kb" yaml:"warn_kb"`

	// MaxKB is the hard ceiling; larger files are discarded.
	MaxKB float64 `mapstructure:"max_kb" yaml:"max_kb"`

	// SaveDir is where extracted attachments are written.
	SaveDir string `mapstructure:"save_dir" yaml:"save_dir"`

	// Overwrite replaces existing files instead of picking a fresh name.
	Overwrite bool `mapstructure:"overwrite" yaml:"overwrite"`
}

// Limits converts the thresholds for the attachment codec.
func (c AttachmentsConfig) Limits() attachment.Limits {
	return attachment.Limits{WarnKB: c.WarnKB, MaxKB: c.MaxKB}
}

// StoreConfig holds settings for the saved-attachment catalog.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Attachments AttachmentsConfig `mapstructure:"attachments" yaml:"attachments"`
	Store       StoreConfig       `mapstructure:"store" yaml:"store"`
	Display     DisplayConfig     `mapstructure:"display" yaml:"display"`
}

// configDir returns ~/.config/bmattach, or the working directory when the
// home directory is unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "bmattach")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/bmattach/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultStorePath returns the default location of the catalog database.
func DefaultStorePath() string {
	return filepath.Join(configDir(), "attachments.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Attachments: AttachmentsConfig{
			WarnKB:  attachment.DefaultWarnKB,
			MaxKB:   attachment.DefaultMaxKB,
			SaveDir: "attachments",
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	defaults := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("attachments.warn_kb", defaults.Attachments.WarnKB)
	v.SetDefault("attachments.max_kb", defaults.Attachments.MaxKB)
	v.SetDefault("attachments.save_dir", defaults.Attachments.SaveDir)
	v.SetDefault("attachments.overwrite", defaults.Attachments.Overwrite)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("display.theme", defaults.Display.Theme)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Attachments.Limits().Validate(); err != nil {
		return nil, fmt.Errorf("invalid attachments config in %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("attachments", map[string]any{
		"warn_kb":   cfg.Attachments.WarnKB,
		"max_kb":    cfg.Attachments.MaxKB,
		"save_dir":  cfg.Attachments.SaveDir,
		"overwrite": cfg.Attachments.Overwrite,
	})
	v.Set("store", map[string]any{"path": cfg.Store.Path})
	v.Set("display", map[string]any{"theme": cfg.Display.Theme})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
