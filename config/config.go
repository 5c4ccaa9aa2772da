package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig          `yaml:"server"`
	Registry   RegistryConfig        `yaml:"registry"`
	Sites      map[string]SiteConfig `yaml:"sites"`
	WorkerPool WorkerPoolConfig      `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// RegistryConfig locates the durable stores on the shared filesystem.
type RegistryConfig struct {
	BasePath     string `yaml:"base_path"`
	RosterCSV    string `yaml:"roster_csv"`
	ExclusionCSV string `yaml:"exclusion_csv"`
	// DefaultSite is assumed for roster rows whose site_key column is empty
	// (hand-edited rows predating the column).
	DefaultSite string `yaml:"default_site"`
}

// SiteConfig holds the static facts about one deployment site.
type SiteConfig struct {
	Label            string   `yaml:"label"`
	Latitude         float64  `yaml:"latitude"`
	Longitude        float64  `yaml:"longitude"`
	Elevation        float64  `yaml:"elevation"`
	SurfaceTilt      *float64 `yaml:"surface_tilt"`    // nil for tracked mounts
	SurfaceAzimuth   *float64 `yaml:"surface_azimuth"` // nil for tracked mounts
	OutdoorDirectory string   `yaml:"outdoor_directory"`
}

// WorkerPoolConfig holds the configuration for batch fan-out across groups.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Registry.BasePath == "" {
		return nil, fmt.Errorf("registry.base_path must be set")
	}
	if cfg.Registry.RosterCSV == "" {
		return nil, fmt.Errorf("registry.roster_csv must be set")
	}
	if cfg.Registry.ExclusionCSV == "" {
		return nil, fmt.Errorf("registry.exclusion_csv must be set")
	}
	if len(cfg.Sites) == 0 {
		return nil, fmt.Errorf("at least one site must be configured")
	}
	for key, site := range cfg.Sites {
		if site.OutdoorDirectory == "" {
			return nil, fmt.Errorf("site %q: outdoor_directory must be set", key)
		}
	}
	if cfg.Registry.DefaultSite != "" {
		if _, ok := cfg.Sites[cfg.Registry.DefaultSite]; !ok {
			return nil, fmt.Errorf("registry.default_site %q is not a configured site", cfg.Registry.DefaultSite)
		}
	}

	return &cfg, nil
}

// Site returns the configuration for a site key.
func (c *Config) Site(key string) (SiteConfig, bool) {
	site, ok := c.Sites[key]
	return site, ok
}

// SiteKeys returns the configured site keys, for error messages.
func (c *Config) SiteKeys() []string {
	keys := make([]string, 0, len(c.Sites))
	for key := range c.Sites {
		keys = append(keys, key)
	}
	return keys
}

// OutdoorDirs returns the site key to outdoor directory mapping used by the
// document store.
func (c *Config) OutdoorDirs() map[string]string {
	dirs := make(map[string]string, len(c.Sites))
	for key, site := range c.Sites {
		dirs[key] = site.OutdoorDirectory
	}
	return dirs
}
