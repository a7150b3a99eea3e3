package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/lineq"
)

// Built-in endpoint used when no config file names one.
const (
	DefaultProfile = "racomaps"
	DefaultHost    = "racomaps.ns0.it"
	DefaultPort    = 8080
)

// Config holds endpoint profiles and client defaults.
type Config struct {
	Default     string
	Mode        lineq.SearchMode
	DialTimeout time.Duration
	IOTimeout   time.Duration
	Endpoints   map[string]lineq.Endpoint
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Default: DefaultProfile,
		Mode:    lineq.FullScan,
		Endpoints: map[string]lineq.Endpoint{
			DefaultProfile: {Host: DefaultHost, Port: DefaultPort},
		},
	}
}

type fileConfig struct {
	Default     string                    `toml:"default"`
	Mode        string                    `toml:"mode"`
	DialTimeout string                    `toml:"dial_timeout"`
	IOTimeout   string                    `toml:"io_timeout"`
	Endpoints   map[string]lineq.Endpoint `toml:"endpoints"`
}

// LoadConfig reads the TOML file at path over DefaultConfig. A missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	for name, ep := range raw.Endpoints {
		ep.Host = strings.TrimSpace(ep.Host)
		if err := ep.Validate(); err != nil {
			return Config{}, fmt.Errorf("endpoint %q: %w", name, err)
		}
		cfg.Endpoints[name] = ep
	}

	if meta.IsDefined("default") {
		cfg.Default = strings.TrimSpace(raw.Default)
		if _, ok := cfg.Endpoints[cfg.Default]; !ok {
			return Config{}, lineq.Errorf(lineq.EINVALID, "default profile %q is not defined", cfg.Default)
		}
	}

	if meta.IsDefined("mode") {
		m, err := lineq.ParseSearchMode(raw.Mode)
		if err != nil {
			return Config{}, fmt.Errorf("parse mode: %w", err)
		}
		cfg.Mode = m
	}

	if meta.IsDefined("dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DialTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse dial_timeout: %w", err)
		}
		cfg.DialTimeout = d
	}

	if meta.IsDefined("io_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.IOTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse io_timeout: %w", err)
		}
		cfg.IOTimeout = d
	}

	return cfg, nil
}

// Resolve picks the endpoint for a run. A non-empty host or non-zero port
// overrides the one from the profile; an empty profile means the default.
func (c Config) Resolve(profile, host string, port int) (lineq.Endpoint, error) {
	name := profile
	if name == "" {
		name = c.Default
	}
	ep, ok := c.Endpoints[name]
	if !ok {
		return lineq.Endpoint{}, lineq.Errorf(lineq.ENOTFOUND, "profile %q not found. Use 'lineq profiles' to see available profiles.", name)
	}

	if host = strings.TrimSpace(host); host != "" {
		ep.Host = host
	}
	if port != 0 {
		ep.Port = port
	}
	if err := ep.Validate(); err != nil {
		return lineq.Endpoint{}, err
	}
	return ep, nil
}
