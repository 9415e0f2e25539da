package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	laberrors "lab/internal/errors"
	"lab/internal/logging"
	"lab/pkg/fileops"
)

const (
	AppName = "git-lab" // application name used for config directory

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "GIT_LAB_CONFIG"

	currentVersion = "1"
)

// Instance holds per-host settings. Tokens themselves live in the OS
// keyring; the config only remembers that one exists.
type Instance struct {
	// AuthCommand is run through the shell to print a token.
	AuthCommand string `yaml:"auth_command,omitempty"`
	// HasToken records that a token for this host is in the keyring.
	HasToken bool `yaml:"has_token,omitempty"`
}

// Config holds user configuration for git-lab.
type Config struct {
	Version   string              `yaml:"version"`
	InitTime  int64               `yaml:"init_time"` // Unix timestamp of first save
	Instances map[string]Instance `yaml:"instances,omitempty"`

	path string
}

// ConfigPath returns the config file location: $GIT_LAB_CONFIG when set,
// otherwise config.yaml in the XDG config directory.
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	path := filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
	logging.Debug("Determined config path", "path", path)
	return path
}

// DefaultConfig returns an empty configuration.
func DefaultConfig() Config {
	return Config{
		Version:   currentVersion,
		Instances: map[string]Instance{},
	}
}

// Load loads the config from ConfigPath. A missing file is not an error:
// the default config is returned and will be created on first Save.
func Load() (*Config, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logging.Debug("No config file, using defaults", "path", path)
		cfg := DefaultConfig()
		cfg.path = path
		return &cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads config from a specific path.
func LoadFrom(path string) (*Config, error) {
	const op laberrors.Op = "config.LoadFrom"

	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, laberrors.E(op, laberrors.KindConfig, "failed to open config file", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, laberrors.E(op, laberrors.KindConfig, fmt.Sprintf("failed to parse config file %s", path), err)
	}
	if cfg.Instances == nil {
		cfg.Instances = map[string]Instance{}
	}
	cfg.path = path

	return &cfg, nil
}

// Path returns the file the config was loaded from, or ConfigPath for a
// config that was never loaded.
func (c *Config) Path() string {
	if c.path != "" {
		return c.path
	}
	return ConfigPath()
}

// Save writes the config back to Path.
func (c *Config) Save() error {
	return c.SaveTo(c.Path())
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	const op laberrors.Op = "config.SaveTo"

	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}
	if c.Version == "" {
		c.Version = currentVersion
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return laberrors.E(op, laberrors.KindConfig, "failed to encode config", err)
	}

	// Auth commands can reveal where secrets live; keep the file private.
	if err := fileops.WriteFileAtomic(path, data, 0o600); err != nil {
		return laberrors.E(op, laberrors.KindConfig, "failed to write config", err)
	}

	c.path = path
	logging.Debug("Saved config", "path", path, "instances", len(c.Instances))
	return nil
}

// Instance returns the settings for host.
func (c *Config) Instance(host string) (Instance, bool) {
	inst, ok := c.Instances[host]
	return inst, ok
}

// SetInstance replaces the settings for host.
func (c *Config) SetInstance(host string, inst Instance) {
	if c.Instances == nil {
		c.Instances = map[string]Instance{}
	}
	c.Instances[host] = inst
}

// RemoveInstance forgets host.
func (c *Config) RemoveInstance(host string) {
	delete(c.Instances, host)
}

// Hosts returns the configured hostnames in sorted order.
func (c *Config) Hosts() []string {
	hosts := make([]string, 0, len(c.Instances))
	for h := range c.Instances {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}
