package monitoring

import (
	"fmt"
	"strings"

	"github.com/compozy/modhost/pkg/config"
)

// Config holds configuration for monitoring service
type Config struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path"    yaml:"path"    mapstructure:"path"`
}

// DefaultConfig returns default monitoring configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled: false,
		Path:    "/metrics",
	}
}

// FromAppConfig extracts the monitoring section of the host configuration.
func FromAppConfig(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	out := &Config{Enabled: cfg.Monitoring.Enabled, Path: cfg.Monitoring.Path}
	if out.Path == "" {
		out.Path = DefaultConfig().Path
	}
	return out
}

// Validate validates the monitoring configuration
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("monitoring path cannot be empty")
	}
	if c.Path[0] != '/' {
		return fmt.Errorf("monitoring path must start with '/': got %s", c.Path)
	}
	if strings.ContainsRune(c.Path, '?') {
		return fmt.Errorf("monitoring path cannot contain query parameters")
	}
	return nil
}
