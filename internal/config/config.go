// Package config loads the YAML boot configuration for a Schemat core
// process: the module loader's root, the registry's TTL/eviction policy,
// the site's default path prefix, and the record store's layer list.
// Modeled on andyballingall-json-schema-manager's internal/config:
// a plain struct tagged for gopkg.in/yaml.v3, a Load that reads, unmarshals
// and validates in one pass, and a typed error per failure mode rather
// than wrapped stdlib errors.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the conventional boot config file name looked for in
// the directory passed to Load.
const ConfigFileName = "schemat.yml"

// DefaultConfigContent seeds a new installation's config file.
const DefaultConfigContent = `# Schemat core boot configuration

# Filesystem root the module loader resolves local module paths against.
modules:
  root: "./app"

# Object Registry cache policy.
registry:
  defaultTTL: 5m
  evictionInterval: 30s

# The site's canonical path prefix, e.g. GET /$/<id> for every object.
site:
  defaultPath: "/$"

# Record Store layers, outermost (writable) first. Each name is free text
# used only in logging; dsn is interpreted by the store constructor
# (e.g. "memory://", "etcd://host:2379/prefix").
layers:
  - name: primary
    dsn: "memory://"
`

// LayerConfig names one layer of the (possibly layered) Record Store.
type LayerConfig struct {
	Name string `yaml:"name"`
	DSN  string `yaml:"dsn"`
}

// ModulesConfig configures the Module Loader.
type ModulesConfig struct {
	Root string `yaml:"root"`
}

// RegistryConfig configures the Object Registry's cache policy. The YAML
// fields are duration strings (e.g. "5m", "30s"); Validate parses them
// into the Default*/Eviction* fields used by the rest of the program.
type RegistryConfig struct {
	DefaultTTL       string `yaml:"defaultTTL"`
	EvictionInterval string `yaml:"evictionInterval"`

	ParsedDefaultTTL       time.Duration `yaml:"-"`
	ParsedEvictionInterval time.Duration `yaml:"-"`
}

// SiteConfig configures the site-wide routing root.
type SiteConfig struct {
	DefaultPath string `yaml:"defaultPath"`
}

// Config is the full boot configuration for a Schemat core process.
type Config struct {
	Modules  ModulesConfig  `yaml:"modules"`
	Registry RegistryConfig `yaml:"registry"`
	Site     SiteConfig     `yaml:"site"`
	Layers   []LayerConfig  `yaml:"layers"`
}

// Load reads and validates the config file named ConfigFileName inside dir.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingConfigError{Path: path}
		}
		return nil, err
	}
	return Parse(data)
}

// Parse validates and unmarshals raw YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, &InvalidYAMLError{Wrapped: err}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks required fields and fills in defaults for optional ones.
func (c *Config) Validate() error {
	if c.Modules.Root == "" {
		return &MissingPropertyError{Property: "modules.root"}
	}
	if c.Site.DefaultPath == "" {
		return &MissingPropertyError{Property: "site.defaultPath"}
	}
	if len(c.Layers) == 0 {
		return &MissingPropertyError{Property: "layers"}
	}
	for i, l := range c.Layers {
		if l.DSN == "" {
			return &MissingPropertyError{Property: fmt.Sprintf("layers[%d].dsn", i)}
		}
	}
	ttl, interval := c.Registry.DefaultTTL, c.Registry.EvictionInterval
	if ttl == "" {
		ttl = "5m"
	}
	if interval == "" {
		interval = "30s"
	}
	parsedTTL, err := time.ParseDuration(ttl)
	if err != nil {
		return &InvalidDurationError{Property: "registry.defaultTTL", Value: ttl, Wrapped: err}
	}
	parsedInterval, err := time.ParseDuration(interval)
	if err != nil {
		return &InvalidDurationError{Property: "registry.evictionInterval", Value: interval, Wrapped: err}
	}
	c.Registry.ParsedDefaultTTL = parsedTTL
	c.Registry.ParsedEvictionInterval = parsedInterval
	return nil
}
