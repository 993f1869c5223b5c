package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config mirrors quire.yaml. Zero values mean "not set".
type Config struct {
	Backend  string    `yaml:"backend"`
	Path     string    `yaml:"path"`
	Key      string    `yaml:"key"`
	Autosave string    `yaml:"autosave"`
	Watch    *bool     `yaml:"watch"`
	Ignore   []string  `yaml:"ignore"`
	Log      LogConfig `yaml:"log"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // rotate into this file instead of stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// LoadConfig reads a quire.yaml file. A missing file yields an empty
// Config; a relative Path or Log.File is resolved against the file's
// directory.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if _, err := cfg.AutosaveInterval(); err != nil {
		return cfg, err
	}

	base := filepath.Dir(path)
	if cfg.Path != "" && !filepath.IsAbs(cfg.Path) {
		cfg.Path = filepath.Join(base, cfg.Path)
	}
	if cfg.Log.File != "" && !filepath.IsAbs(cfg.Log.File) {
		cfg.Log.File = filepath.Join(base, cfg.Log.File)
	}
	return cfg, nil
}

// AutosaveInterval parses the autosave duration; empty means off.
func (c Config) AutosaveInterval() (time.Duration, error) {
	if c.Autosave == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Autosave)
	if err != nil {
		return 0, fmt.Errorf("invalid autosave interval %q: %w", c.Autosave, err)
	}
	return d, nil
}

// Options turns the file settings into options. Callers append flag-derived
// options afterwards so flags take precedence.
func (c Config) Options() []Option {
	var opts []Option
	if c.Backend != "" {
		opts = append(opts, WithBackend(c.Backend))
	}
	if c.Key != "" {
		opts = append(opts, WithKey(c.Key))
	}
	if d, err := c.AutosaveInterval(); err == nil && d != 0 {
		opts = append(opts, WithAutosave(d))
	}
	if c.Watch != nil {
		opts = append(opts, WithWatch(*c.Watch))
	}
	if len(c.Ignore) > 0 {
		opts = append(opts, WithIgnore(c.Ignore...))
	}
	return opts
}
