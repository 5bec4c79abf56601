package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceType identifies where a configuration value came from.
type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
)

// Source provides configuration data as a nested map.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

// yamlProvider implements Source interface for YAML files.
type yamlProvider struct {
	path string
}

// NewYAMLProvider creates a YAML file source. A missing file yields no data.
func NewYAMLProvider(path string) Source {
	return &yamlProvider{path: path}
}

// Load reads configuration from a YAML file.
func (y *yamlProvider) Load() (map[string]any, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", y.path, err)
	}
	return filterNilValues(config), nil
}

func (y *yamlProvider) Type() SourceType {
	return SourceYAML
}

// filterNilValues recursively removes nil values from a map
// This prevents koanf from overriding existing values with nil
func filterNilValues(m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		if v == nil {
			continue
		}
		if nestedMap, ok := v.(map[string]any); ok {
			filtered := filterNilValues(nestedMap)
			if len(filtered) > 0 {
				result[k] = filtered
			}
		} else {
			result[k] = v
		}
	}
	return result
}

// FileSources returns the YAML sources for dir: config.yaml followed by
// config.<environment>.yaml. An empty environment is taken from the
// RUNTIME_ENVIRONMENT variable, then from config.yaml, then the default.
func FileSources(dir, environment string) ([]Source, error) {
	base := NewYAMLProvider(filepath.Join(dir, "config.yaml"))
	if environment == "" {
		environment = os.Getenv("RUNTIME_ENVIRONMENT")
	}
	if environment == "" {
		data, err := base.Load()
		if err != nil {
			return nil, err
		}
		if runtime, ok := data["runtime"].(map[string]any); ok {
			environment, _ = runtime["environment"].(string)
		}
	}
	if environment == "" {
		environment = Default().Runtime.Environment
	}
	name := fmt.Sprintf("config.%s.yaml", strings.ToLower(environment))
	return []Source{base, NewYAMLProvider(filepath.Join(dir, name))}, nil
}
