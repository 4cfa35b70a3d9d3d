// Package config resolves mdrepair settings from defaults, an optional TOML
// file, a .env file and MDREPAIR_* environment variables. Command-line flags
// are applied on top by the cmd package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/gaurav-prasanna/mdrepair/core/corpus"
)

// FileName is the config file looked up in the corpus root.
const FileName = "mdrepair.toml"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MDREPAIR_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings for one run.
type Config struct {
	Root        string   `toml:"-"`
	ContentDir  string   `toml:"content_dir"`
	AssetDir    string   `toml:"asset_dir"`
	Patterns    []string `toml:"patterns"`
	LegacyHosts []string `toml:"legacy_hosts"`
	ExportFile  string   `toml:"export_file"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Root:        ".",
		ContentDir:  "content",
		AssetDir:    "public/images",
		Patterns:    append([]string(nil), corpus.DefaultPatterns...),
		LegacyHosts: []string{"welltechnically.com"},
	}
}

// lookupEnv is swapped in tests.
var lookupEnv = os.LookupEnv

// Load builds the configuration for root. When path is empty, FileName in
// root is read if present; an explicit path must exist.
func Load(fs afero.Fs, root, path string) (*Config, error) {
	cfg := Default()
	if root != "" {
		cfg.Root = root
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.Root, FileName)
	}
	if err := cfg.loadFile(fs, path, explicit); err != nil {
		return nil, err
	}

	dotenv, err := readDotenv(fs, filepath.Join(cfg.Root, ".env"))
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
	return cfg, nil
}

func (c *Config) loadFile(fs afero.Fs, path string, required bool) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// readDotenv parses a .env file without touching the process environment.
func readDotenv(fs afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	env, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return env, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvPrefix + "CONTENT_DIR"); ok && v != "" {
		c.ContentDir = v
	}
	if v, ok := lookup(EnvPrefix + "ASSET_DIR"); ok && v != "" {
		c.AssetDir = v
	}
	if v, ok := lookup(EnvPrefix + "EXPORT_FILE"); ok {
		c.ExportFile = v
	}
	if v, ok := lookup(EnvPrefix + "PATTERNS"); ok && v != "" {
		c.Patterns = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "LEGACY_HOSTS"); ok {
		c.LegacyHosts = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("%w: content_dir is empty", ErrInvalidConfig)
	}
	if c.AssetDir == "" {
		return fmt.Errorf("%w: asset_dir is empty", ErrInvalidConfig)
	}
	if len(c.Patterns) == 0 {
		return fmt.Errorf("%w: no document patterns", ErrInvalidConfig)
	}
	for _, p := range c.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: bad pattern %q", ErrInvalidConfig, p)
		}
	}
	return nil
}

// ContentPath returns the content directory resolved against Root.
func (c *Config) ContentPath() string {
	return c.resolve(c.ContentDir)
}

// AssetPath returns the asset directory resolved against Root.
func (c *Config) AssetPath() string {
	return c.resolve(c.AssetDir)
}

// ExportPath returns the cross-reference export resolved against Root, or
// an empty string when none is configured.
func (c *Config) ExportPath() string {
	if c.ExportFile == "" {
		return ""
	}
	return c.resolve(c.ExportFile)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}
