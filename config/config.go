// Package config loads service configuration from an optional YAML file and
// DOCSIGN_* environment variables. Command line flags are applied last by
// the binaries, so the precedence is flags > environment > file > defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ruteri/doc-signing-backend/common"
	"github.com/ruteri/doc-signing-backend/interfaces"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCSIGN_"

// Config is the full service configuration.
type Config struct {
	ListenAddr    string        `yaml:"listen_addr"`
	MetricsAddr   string        `yaml:"metrics_addr"`
	EnablePprof   bool          `yaml:"pprof"`
	DrainDuration time.Duration `yaml:"drain_duration"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects the persistence backends.
type StorageConfig struct {
	// URIs are storage backend locations. The first is authoritative for
	// uniqueness; the rest are replicas.
	URIs []string `yaml:"uris"`

	// Registry enables recording signing events and attributing verifications.
	Registry bool `yaml:"registry"`

	// Archive keeps a copy of every signed document.
	Archive bool `yaml:"archive"`
}

// LogConfig mirrors common.LoggingOpts plus the per-process uid switch.
type LogConfig struct {
	JSON    bool   `yaml:"json"`
	Debug   bool   `yaml:"debug"`
	UID     bool   `yaml:"uid"`
	Service string `yaml:"service"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		ListenAddr:    "127.0.0.1:8080",
		MetricsAddr:   "127.0.0.1:8090",
		DrainDuration: 45 * time.Second,
		ReadTimeout:   60 * time.Second,
		WriteTimeout:  30 * time.Second,
		MaxBodyBytes:  50 << 20,
		Storage: StorageConfig{
			URIs:     []string{"memory://default"},
			Registry: true,
		},
		Log: LogConfig{
			Service: common.PackageName,
		},
	}
}

// Load reads path (if not empty) over the defaults and applies environment
// overrides. Unknown YAML keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnvOverrides overwrites fields from DOCSIGN_* variables that are set.
func ApplyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"LISTEN_ADDR":  &cfg.ListenAddr,
		"METRICS_ADDR": &cfg.MetricsAddr,
		"LOG_SERVICE":  &cfg.Log.Service,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"PPROF":     &cfg.EnablePprof,
		"REGISTRY":  &cfg.Storage.Registry,
		"ARCHIVE":   &cfg.Storage.Archive,
		"LOG_JSON":  &cfg.Log.JSON,
		"LOG_DEBUG": &cfg.Log.Debug,
		"LOG_UID":   &cfg.Log.UID,
	}
	for name, dst := range bools {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = parsed
	}

	if v, ok := lookup("DRAIN_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sDRAIN_DURATION: %w", EnvPrefix, err)
		}
		cfg.DrainDuration = d
	}

	if v, ok := lookup("STORAGE"); ok {
		cfg.Storage.URIs = SplitList(v)
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max body bytes must be positive")
	}
	if len(c.Storage.URIs) == 0 {
		return errors.New("at least one storage URI is required")
	}
	for _, uri := range c.Storage.URIs {
		if _, err := interfaces.NewStorageBackendLocation(uri); err != nil {
			return fmt.Errorf("storage URI %q: %w", uri, err)
		}
	}
	return nil
}
