// Package config loads slidekit settings.
//
// Settings are resolved in order, later sources winning:
//
//  1. built-in defaults
//  2. a slidekit.toml file, when present
//  3. a .env file next to it, when present
//  4. SLIDEKIT_* environment variables
//
// Example slidekit.toml:
//
//	palette = "modern-slate"
//	strict  = true
//	formats = ["svg", "pdf"]
//
//	[cache]
//	dir       = "/var/cache/slidekit"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/slidekit/pkg/core/palette"
	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/render/sink"
)

// FileName is the config file looked up in the working directory.
const FileName = "slidekit.toml"

// Environment variables that override the file.
const (
	EnvCacheDir = "SLIDEKIT_CACHE_DIR"
	EnvRedisURL = "SLIDEKIT_REDIS_URL"
	EnvPalette  = "SLIDEKIT_PALETTE"
	EnvStrict   = "SLIDEKIT_STRICT"
	EnvAddr     = "SLIDEKIT_ADDR"
)

// DefaultAddr is where serve listens when nothing else is configured.
const DefaultAddr = ":8080"

// Config holds user settings shared by the CLI and the server.
type Config struct {
	// Palette overrides the palette of every diagram when set.
	Palette string   `toml:"palette"`
	Strict  bool     `toml:"strict"`
	Formats []string `toml:"formats"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the layout and artifact cache backend. RedisURL wins
// over Dir when both are set.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Disabled bool   `toml:"disabled"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// Load reads path and the environment. An empty path means FileName in the
// working directory, and a missing default file is not an error. An
// explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	if err := cfg.readFile(path, explicit); err != nil {
		return Config{}, err
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "load %s", envFile)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML settings over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := c.decode(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Config) decode(data []byte) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown config key %q", undec[0].String())
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvCacheDir); ok {
		c.Cache.Dir = v
	}
	if v, ok := os.LookupEnv(EnvRedisURL); ok {
		c.Cache.RedisURL = v
	}
	if v, ok := os.LookupEnv(EnvPalette); ok {
		c.Palette = v
	}
	if v, ok := os.LookupEnv(EnvAddr); ok {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv(EnvStrict); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a boolean", EnvStrict, v)
		}
		c.Strict = b
	}
	return nil
}

// Validate checks the palette name and format list.
func (c Config) Validate() error {
	if _, err := palette.ParseName(c.Palette); err != nil {
		return err
	}
	if len(c.Formats) > 0 {
		if _, err := sink.ParseFormats(strings.Join(c.Formats, ",")); err != nil {
			return err
		}
	}
	return nil
}
