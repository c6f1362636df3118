// Package config loads synth settings from defaults, an optional
// synth.toml, and SYNTH_* environment variables, in increasing precedence.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/synth"
)

// EnvPrefix prefixes every environment override, e.g. SYNTH_LOG_JSON.
const EnvPrefix = "SYNTH"

// Config is the resolved configuration.
type Config struct {
	// Backend pins a synthesis backend: auto, subclass or forwarding.
	Backend string        `mapstructure:"backend"`
	Log     LogConfig     `mapstructure:"log"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Golden  GoldenConfig  `mapstructure:"golden"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	JSON    bool `mapstructure:"json"`
	Verbose int  `mapstructure:"verbose"`
}

// CatalogConfig points at the synthesis catalog database. An empty path
// disables recording.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// GoldenConfig locates scenario golden files.
type GoldenConfig struct {
	Dir    string `mapstructure:"dir"`
	Update bool   `mapstructure:"update"`
}

// SetDefaults registers every key with its default value. Keys without a
// default are invisible to environment overrides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend", "auto")
	v.SetDefault("log.json", false)
	v.SetDefault("log.verbose", 0)
	v.SetDefault("catalog.path", "")
	v.SetDefault("golden.dir", "testdata/golden")
	v.SetDefault("golden.update", false)
}

// New returns a viper instance wired with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads configuration. With an empty path it looks for synth.toml in
// the working directory and carries on without one.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	} else {
		v.SetConfigName("synth")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "reading synth.toml")
			}
		}
	}
	return FromViper(v)
}

// FromViper unmarshals and validates a prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if _, err := synth.ParseBackend(c.Backend); err != nil {
		return errors.Wrap(err, "config: backend")
	}
	if c.Log.Verbose < 0 {
		return errors.Newf("config: log.verbose must be >= 0, got %d", c.Log.Verbose)
	}
	return nil
}

// BackendTag returns the pinned backend, or "" when the choice is automatic.
func (c *Config) BackendTag() synth.BackendTag {
	tag, _ := synth.ParseBackend(c.Backend)
	return tag
}

// BuilderOptions turns the configuration into synth builder options.
func (c *Config) BuilderOptions() []synth.Option {
	if tag := c.BackendTag(); tag != "" {
		return []synth.Option{synth.WithBackend(tag)}
	}
	return nil
}
