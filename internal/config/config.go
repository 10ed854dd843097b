// Package config loads txtseek settings from defaults, YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/txtseek/configs"
	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/scanner"
	"github.com/Aman-CERP/txtseek/internal/search"
	"github.com/Aman-CERP/txtseek/internal/store"
)

// ProjectFileNames are checked in order in the indexed root.
var ProjectFileNames = []string{".txtseek.yaml", ".txtseek.yml"}

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "TXTSEEK_"

// Config is the full configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Paths    PathsConfig    `yaml:"paths"`
	Index    IndexConfig    `yaml:"index"`
	Search   SearchConfig   `yaml:"search"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watch    WatchConfig    `yaml:"watch"`
}

// PathsConfig controls which paths are walked.
type PathsConfig struct {
	// Exclude patterns are added to the defaults, never replace them.
	Exclude []string `yaml:"exclude"`
}

// IndexConfig controls document discovery and building.
type IndexConfig struct {
	Extensions     []string `yaml:"extensions"`
	MaxFileSize    int64    `yaml:"max_file_size"`
	MaxDepth       int      `yaml:"max_depth"`
	Workers        int      `yaml:"workers"`
	DetectNewFiles bool     `yaml:"detect_new_files"`
}

// SearchConfig controls ranking and caching.
type SearchConfig struct {
	MaxResults   int  `yaml:"max_results"`
	IDFSmoothing bool `yaml:"idf_smoothing"`
	CacheSize    int  `yaml:"cache_size"`
}

// SnapshotConfig controls persistence.
type SnapshotConfig struct {
	Backend string `yaml:"backend"`
	// Dir moves snapshots out of the indexed roots.
	Dir string `yaml:"dir"`
}

// LoggingConfig controls diagnostics.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// File enables JSON file logging at the given path.
	File string `yaml:"file"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

var defaultExcludePatterns = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/node_modules/**",
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			Exclude: append([]string(nil), defaultExcludePatterns...),
		},
		Index: IndexConfig{
			Extensions:  append([]string(nil), scanner.DefaultExtensions...),
			MaxFileSize: scanner.DefaultMaxFileSize,
			MaxDepth:    scanner.DefaultMaxDepth,
		},
		Search: SearchConfig{
			CacheSize: search.DefaultCacheSize,
		},
		Snapshot: SnapshotConfig{
			Backend: string(store.DefaultBackend),
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Watch: WatchConfig{
			Debounce: "200ms",
		},
	}
}

// GetUserConfigPath returns the user configuration file:
// $XDG_CONFIG_HOME/txtseek/config.yaml, else ~/.config/txtseek/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "txtseek", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "txtseek", "config.yaml")
	}
	return filepath.Join(home, ".config", "txtseek", "config.yaml")
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load builds the configuration for the root dir, in increasing precedence:
//  1. Defaults
//  2. User config
//  3. Project config (.txtseek.yaml in dir)
//  4. TXTSEEK_* environment variables
//
// CLI flags are applied by the caller on top.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if dir != "" {
		for _, name := range ProjectFileNames {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				if err := cfg.loadYAML(path); err != nil {
					return nil, err
				}
				break
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return seekerrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path).
			WithSuggestion("Check the YAML syntax, or run 'txtseek config init --force' to regenerate it")
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith copies the non-zero values of other into c. Boolean flags can
// only be switched on this way; use the environment to switch them off.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	for _, p := range other.Paths.Exclude {
		if !contains(c.Paths.Exclude, p) {
			c.Paths.Exclude = append(c.Paths.Exclude, p)
		}
	}

	if len(other.Index.Extensions) > 0 {
		c.Index.Extensions = other.Index.Extensions
	}
	if other.Index.MaxFileSize != 0 {
		c.Index.MaxFileSize = other.Index.MaxFileSize
	}
	if other.Index.MaxDepth != 0 {
		c.Index.MaxDepth = other.Index.MaxDepth
	}
	if other.Index.Workers != 0 {
		c.Index.Workers = other.Index.Workers
	}
	if other.Index.DetectNewFiles {
		c.Index.DetectNewFiles = true
	}

	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.IDFSmoothing {
		c.Search.IDFSmoothing = true
	}
	if other.Search.CacheSize != 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}

	if other.Snapshot.Backend != "" {
		c.Snapshot.Backend = other.Snapshot.Backend
	}
	if other.Snapshot.Dir != "" {
		c.Snapshot.Dir = other.Snapshot.Dir
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}

	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
}

func (c *Config) applyEnvOverrides() error {
	var err error
	lookup := func(name string) (string, bool) {
		v, ok := os.LookupEnv(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	setInt := func(name string, dst *int) {
		if v, ok := lookup(name); ok && err == nil {
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				err = envError(name, v, convErr)
				return
			}
			*dst = n
		}
	}
	setBool := func(name string, dst *bool) {
		if v, ok := lookup(name); ok && err == nil {
			b, convErr := strconv.ParseBool(v)
			if convErr != nil {
				err = envError(name, v, convErr)
				return
			}
			*dst = b
		}
	}

	if v, ok := lookup("EXTENSIONS"); ok {
		c.Index.Extensions = splitList(v)
	}
	if v, ok := lookup("EXCLUDE"); ok {
		for _, p := range splitList(v) {
			if !contains(c.Paths.Exclude, p) {
				c.Paths.Exclude = append(c.Paths.Exclude, p)
			}
		}
	}
	if v, ok := lookup("MAX_FILE_SIZE"); ok {
		n, convErr := strconv.ParseInt(v, 10, 64)
		if convErr != nil {
			return envError("MAX_FILE_SIZE", v, convErr)
		}
		c.Index.MaxFileSize = n
	}
	setInt("MAX_DEPTH", &c.Index.MaxDepth)
	setInt("WORKERS", &c.Index.Workers)
	setBool("DETECT_NEW_FILES", &c.Index.DetectNewFiles)
	setInt("MAX_RESULTS", &c.Search.MaxResults)
	setBool("IDF_SMOOTHING", &c.Search.IDFSmoothing)
	setInt("CACHE_SIZE", &c.Search.CacheSize)
	if err != nil {
		return err
	}

	if v, ok := lookup("BACKEND"); ok {
		c.Snapshot.Backend = v
	}
	if v, ok := lookup("DATA_DIR"); ok {
		c.Snapshot.Dir = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("LOG_FILE"); ok {
		c.Logging.File = v
	}
	if v, ok := lookup("WATCH_DEBOUNCE"); ok {
		c.Watch.Debounce = v
	}
	return nil
}

func envError(name, value string, cause error) error {
	return seekerrors.ConfigError(fmt.Sprintf("invalid value %q for %s%s", value, EnvPrefix, name), cause)
}

// Validate rejects values that cannot work.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return seekerrors.ConfigError(fmt.Sprintf(format, args...), nil)
	}

	if len(c.Index.Extensions) == 0 {
		return invalid("index.extensions must not be empty")
	}
	for _, ext := range c.Index.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return invalid("index.extensions entries must look like .txt, got %q", ext)
		}
	}
	if c.Index.MaxFileSize < 0 {
		return invalid("index.max_file_size must be non-negative, got %d", c.Index.MaxFileSize)
	}
	if c.Index.MaxDepth < 0 {
		return invalid("index.max_depth must be non-negative, got %d", c.Index.MaxDepth)
	}
	if c.Index.Workers < 0 {
		return invalid("index.workers must be non-negative, got %d", c.Index.Workers)
	}
	if c.Search.MaxResults < 0 {
		return invalid("search.max_results must be non-negative, got %d", c.Search.MaxResults)
	}
	if c.Search.CacheSize < 0 {
		return invalid("search.cache_size must be non-negative, got %d", c.Search.CacheSize)
	}
	if _, err := store.ParseBackend(c.Snapshot.Backend); err != nil {
		return seekerrors.ConfigError("snapshot.backend is invalid", err).
			WithSuggestion(fmt.Sprintf("Use one of %v", store.Backends()))
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return invalid("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	if _, err := c.DebounceDuration(); err != nil {
		return seekerrors.ConfigError(fmt.Sprintf("watch.debounce is invalid: %q", c.Watch.Debounce), err)
	}
	return nil
}

// DebounceDuration parses watch.debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration")
	}
	return d, nil
}

// ScannerOptions maps the configuration onto walker options.
func (c *Config) ScannerOptions() scanner.Options {
	return scanner.Options{
		Extensions:      c.Index.Extensions,
		ExcludePatterns: c.Paths.Exclude,
		MaxFileSize:     c.Index.MaxFileSize,
		MaxDepth:        c.Index.MaxDepth,
	}
}

// WriteTemplate writes the commented default configuration to path,
// creating parent directories.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
