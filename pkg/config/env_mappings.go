package config

import (
	"reflect"
	"strings"
	"sync"
)

// EnvMapping represents a mapping between environment variable and config path
type EnvMapping struct {
	EnvVar     string
	ConfigPath string
}

// modulesEnvPrefix routes MODULES_<ID>_<KEY> variables to modules.<id>.<key>.
const modulesEnvPrefix = "MODULES_"

var (
	cachedMappings []EnvMapping
	mappingsOnce   sync.Once
)

// GenerateEnvMappings generates environment variable mappings from config struct tags
func GenerateEnvMappings() []EnvMapping {
	mappingsOnce.Do(func() {
		cachedMappings = extractMappings(reflect.TypeOf(Config{}), "")
	})
	return cachedMappings
}

func extractMappings(t reflect.Type, prefix string) []EnvMapping {
	var mappings []EnvMapping
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		koanfTag := field.Tag.Get("koanf")
		if !field.IsExported() || koanfTag == "" || koanfTag == "-" {
			continue
		}
		configPath := koanfTag
		if prefix != "" {
			configPath = prefix + "." + koanfTag
		}
		if envTag := field.Tag.Get("env"); envTag != "" && envTag != "-" {
			mappings = append(mappings, EnvMapping{EnvVar: envTag, ConfigPath: configPath})
		}
		if field.Type.Kind() == reflect.Struct && field.Type.PkgPath() != "time" {
			mappings = append(mappings, extractMappings(field.Type, configPath)...)
		}
	}
	return mappings
}

// envKeyToPath maps an environment variable to a config path. Unknown
// variables map to "" and are ignored.
func envKeyToPath(key string, mappings map[string]string) string {
	if path, ok := mappings[key]; ok {
		return path
	}
	if rest, ok := strings.CutPrefix(key, modulesEnvPrefix); ok {
		id, field, ok := strings.Cut(strings.ToLower(rest), "_")
		if ok && id != "" && field != "" {
			return "modules." + id + "." + field
		}
	}
	return ""
}
