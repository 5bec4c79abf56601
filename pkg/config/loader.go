package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Metadata records where each loaded key came from.
type Metadata struct {
	Sources  map[string]SourceType
	LoadedAt time.Time
}

// Loader merges configuration sources into a validated Config.
type Loader struct {
	koanf      *koanf.Koanf
	validator  *validator.Validate
	metadata   Metadata
	metadataMu sync.RWMutex
}

// NewLoader creates a configuration loader with validation support.
func NewLoader() *Loader {
	v := validator.New()
	if err := RegisterCustomValidators(v); err != nil {
		panic(fmt.Sprintf("config: register validators: %v", err))
	}
	return &Loader{
		koanf:     koanf.New("."),
		validator: v,
		metadata:  Metadata{Sources: make(map[string]SourceType)},
	}
}

// Load applies defaults, then sources in order, then environment variables.
// Later layers override earlier ones key by key.
func (l *Loader) Load(_ context.Context, sources ...Source) (*Config, error) {
	l.reset()
	if err := l.loadDefaults(); err != nil {
		return nil, err
	}
	for _, source := range sources {
		if source == nil {
			continue
		}
		if err := l.loadSource(source); err != nil {
			return nil, err
		}
	}
	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}
	return l.unmarshalAndValidate()
}

// LoadDir loads config.yaml and config.<environment>.yaml from dir.
func (l *Loader) LoadDir(ctx context.Context, dir, environment string) (*Config, error) {
	sources, err := FileSources(dir, environment)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, sources...)
}

func (l *Loader) reset() {
	l.koanf = koanf.New(".")
	l.metadataMu.Lock()
	l.metadata.Sources = make(map[string]SourceType)
	l.metadata.LoadedAt = time.Now()
	l.metadataMu.Unlock()
}

func (l *Loader) loadDefaults() error {
	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, key := range l.koanf.Keys() {
		l.trackSource(key, SourceDefault)
	}
	return nil
}

func (l *Loader) loadEnvironment() error {
	envToPath := make(map[string]string)
	for _, mapping := range GenerateEnvMappings() {
		envToPath[mapping.EnvVar] = mapping.ConfigPath
	}
	opt := env.Opt{
		TransformFunc: func(key string, value string) (string, any) {
			return envKeyToPath(key, envToPath), value
		},
	}
	return l.track(SourceEnv, func() error {
		if err := l.koanf.Load(env.Provider(".", opt), nil); err != nil {
			return fmt.Errorf("failed to load environment variables: %w", err)
		}
		return nil
	})
}

func (l *Loader) loadSource(source Source) error {
	data, err := source.Load()
	if err != nil {
		return fmt.Errorf("failed to load from source %s: %w", source.Type(), err)
	}
	if len(data) == 0 {
		return nil
	}
	return l.track(source.Type(), func() error {
		// Merge key by key so a partial file keeps the values it omits.
		for key, value := range flattenMap("", data) {
			if err := l.koanf.Set(key, value); err != nil {
				return fmt.Errorf("failed to set key %s from source %s: %w", key, source.Type(), err)
			}
		}
		return nil
	})
}

// track runs apply and attributes every added or changed key to source.
func (l *Loader) track(source SourceType, apply func() error) error {
	before := make(map[string]any)
	for _, key := range l.koanf.Keys() {
		before[key] = l.koanf.Get(key)
	}
	if err := apply(); err != nil {
		return err
	}
	for _, key := range l.koanf.Keys() {
		prev, existed := before[key]
		if !existed || !reflect.DeepEqual(prev, l.koanf.Get(key)) {
			l.trackSource(key, source)
		}
	}
	return nil
}

// flattenMap flattens a nested map into dot-notation keys
func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nestedMap, ok := v.(map[string]any); ok && len(nestedMap) > 0 {
			for fk, fv := range flattenMap(key, nestedMap) {
				result[fk] = fv
			}
		} else {
			result[key] = v
		}
	}
	return result
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var config Config
	if err := l.koanf.UnmarshalWithConf("", &config, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &config,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if config.Modules == nil {
		config.Modules = map[string]any{}
	}
	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// Validate checks struct tags and cross-field rules.
func (l *Loader) Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := l.validator.Struct(config); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return validateConnections(config.Database.Connections)
}

// GetSource returns the source type for a specific configuration key.
func (l *Loader) GetSource(key string) SourceType {
	l.metadataMu.RLock()
	defer l.metadataMu.RUnlock()
	if source, ok := l.metadata.Sources[key]; ok {
		return source
	}
	return SourceDefault
}

func (l *Loader) trackSource(key string, source SourceType) {
	l.metadataMu.Lock()
	defer l.metadataMu.Unlock()
	l.metadata.Sources[key] = source
}

// validateConnections rejects names that collide case-insensitively, since
// they are matched against module IDs that way.
func validateConnections(conns []ConnectionConfig) error {
	seen := make(map[string]string, len(conns))
	for _, c := range conns {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("duplicate connection name %q (already declared as %q)", c.Name, prev)
		}
		seen[key] = c.Name
	}
	return nil
}
