// Package config loads the host configuration: built-in defaults, then
// config.yaml, then config.<environment>.yaml, then environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Config is the root configuration of the host.
type Config struct {
	Runtime    RuntimeConfig    `koanf:"runtime"    yaml:"runtime"    json:"runtime"`
	Database   DatabaseConfig   `koanf:"database"   yaml:"database"   json:"database"`
	Monitoring MonitoringConfig `koanf:"monitoring" yaml:"monitoring" json:"monitoring"`
	// Modules holds one free-form sub-tree per module ID, read by the
	// module's initializer.
	Modules map[string]any `koanf:"modules" yaml:"modules" json:"modules"`
}

// RuntimeConfig controls process-level behavior.
type RuntimeConfig struct {
	Environment string `koanf:"environment" yaml:"environment" json:"environment" env:"RUNTIME_ENVIRONMENT" validate:"required"`
	LogLevel    string `koanf:"log_level"   yaml:"log_level"   json:"log_level"   env:"RUNTIME_LOG_LEVEL"   validate:"oneof=debug info warn error disabled"`
	LogJSON     bool   `koanf:"log_json"    yaml:"log_json"    json:"log_json"    env:"RUNTIME_LOG_JSON"`
}

// DatabaseConfig lists the named connections. An empty list disables the
// data layer.
type DatabaseConfig struct {
	// Strict aborts startup on any binding error instead of skipping the
	// affected module.
	Strict bool `koanf:"strict" yaml:"strict" json:"strict" env:"DATABASE_STRICT"`
	// AutoMigrate applies module migrations at startup.
	AutoMigrate bool               `koanf:"auto_migrate" yaml:"auto_migrate" json:"auto_migrate" env:"DATABASE_AUTO_MIGRATE"`
	Connections []ConnectionConfig `koanf:"connections"  yaml:"connections"  json:"connections"  validate:"dive"`
}

// ConnectionConfig is one named connection. Name matches a module ID.
type ConnectionConfig struct {
	Name            string        `koanf:"name"              yaml:"name"              json:"name"              validate:"required,ident"`
	Dialect         string        `koanf:"dialect"           yaml:"dialect"           json:"dialect"           validate:"required"`
	ConnString      string        `koanf:"conn_string"       yaml:"conn_string"       json:"conn_string"       validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns"    yaml:"max_open_conns"    json:"max_open_conns"    validate:"min=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    yaml:"max_idle_conns"    json:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// MonitoringConfig controls the metrics exporter.
type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled" json:"enabled" env:"MONITORING_ENABLED"`
	Path    string `koanf:"path"    yaml:"path"    json:"path"    env:"MONITORING_PATH"    validate:"required_if=Enabled true"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Database: DatabaseConfig{
			Connections: []ConnectionConfig{},
		},
		Monitoring: MonitoringConfig{
			Enabled: false,
			Path:    "/metrics",
		},
		Modules: map[string]any{},
	}
}

// Module decodes the modules.<id> sub-tree into out. A missing sub-tree
// leaves out untouched.
func (c *Config) Module(id string, out any) error {
	var raw any
	for key, value := range c.Modules {
		if strings.EqualFold(key, id) {
			raw = value
			break
		}
	}
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "koanf",
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("module %s options: %w", id, err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("module %s options: %w", id, err)
	}
	return nil
}
