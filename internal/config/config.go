// Package config loads the YAML application configuration, creating a
// default file on first run.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PublishConfig controls the git publish step for the site directory.
type PublishConfig struct {
	// Remote and Branch are the push target. Empty remote disables the
	// publish endpoint.
	Remote string `yaml:"remote"`
	Branch string `yaml:"branch"`
	// LogFile collects diagnostics from failed publish runs.
	LogFile string `yaml:"log_file"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DataDir holds the three raw JSON lists.
	DataDir string `yaml:"data_dir"`

	// SiteDir is the static site checkout; dashboard.json is written here
	// and the publish step commits from here.
	SiteDir string `yaml:"site_dir"`

	// WindowDays is the rolling look-ahead for the calendar view and
	// recurrence expansion.
	WindowDays int `yaml:"window_days"`

	// Refresh is a cron expression for periodic regeneration. Empty
	// disables the schedule.
	Refresh string `yaml:"refresh"`

	Publish PublishConfig `yaml:"publish"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:     "127.0.0.1:8787",
		DataDir:    "data",
		SiteDir:    "site",
		WindowDays: 28,
		Refresh:    "",
		Publish: PublishConfig{
			Remote:  "origin",
			Branch:  "main",
			LogFile: "publish_errors.log",
		},
	}
}

// Normalize fills in missing/zero values so partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8787"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.SiteDir == "" {
		c.SiteDir = "site"
	}
	if c.WindowDays <= 0 {
		c.WindowDays = 28
	}
	if c.Publish.Remote == "" {
		c.Publish.Remote = "origin"
	}
	if c.Publish.Branch == "" {
		c.Publish.Branch = "main"
	}
	if c.Publish.LogFile == "" {
		c.Publish.LogFile = "publish_errors.log"
	}
}

// Load reads configuration from the given YAML path. A missing file is
// created with defaults; an existing file is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dashboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
