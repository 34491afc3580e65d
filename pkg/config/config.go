// Package config loads switchboard settings from a YAML file with
// SWITCHBOARD_<SECTION>_<KEY> environment overrides.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SWITCHBOARD_"

// DefaultPath is read when no explicit path is given and the file exists.
const DefaultPath = "switchboard.yaml"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Classifier kinds.
const (
	ClassifierKeyword = "keyword"
	ClassifierOpenAI  = "openai"
)

var sections = map[string]bool{
	"log":        true,
	"store":      true,
	"classifier": true,
	"http":       true,
	"redact":     true,
}

// Config is the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	HTTP       HTTPConfig       `yaml:"http" mapstructure:"http"`
	Redact     RedactConfig     `yaml:"redact" mapstructure:"redact"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// StoreConfig selects and tunes the session repository.
type StoreConfig struct {
	Backend  string        `yaml:"backend" mapstructure:"backend"`
	Path     string        `yaml:"path" mapstructure:"path"`
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`

	// EncryptionKey is a base64 AES-256 key; empty disables encryption at rest.
	EncryptionKey string   `yaml:"encryption_key" mapstructure:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" mapstructure:"fallback_keys"`
}

// ClassifierConfig selects the intent classifier.
type ClassifierConfig struct {
	Kind      string        `yaml:"kind" mapstructure:"kind"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Catalogue string        `yaml:"catalogue" mapstructure:"catalogue"`
	Model     string        `yaml:"model" mapstructure:"model"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env" mapstructure:"api_key_env"`
	RateLimit float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int           `yaml:"burst" mapstructure:"burst"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// RedactConfig masks personal data before sessions are stored.
type RedactConfig struct {
	Enabled  bool     `yaml:"enabled" mapstructure:"enabled"`
	Patterns []string `yaml:"patterns" mapstructure:"patterns"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    ".switchboard/sessions",
			Addr:    "localhost:6379",
			Prefix:  "switchboard:session:",
			LockTTL: 30 * time.Second,
		},
		Classifier: ClassifierConfig{
			Kind:      ClassifierKeyword,
			Timeout:   15 * time.Second,
			APIKeyEnv: "OPENAI_API_KEY",
			Burst:     1,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// Load reads path (optional), applies environment overrides and validates.
// An empty path falls back to DefaultPath when that file exists.
func Load(path string) (Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (Config, error) {
	raw := map[string]any{}

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	overlayEnv(raw, environ)

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// unsplit lists keys whose environment value is one list element even when it
// contains commas. Regular expressions often do.
var unsplit = map[string]bool{
	"redact.patterns": true,
}

// overlayEnv copies SWITCHBOARD_SECTION_KEY=value pairs into raw.
// Variables whose section is unknown are left for other consumers.
// A value written as a YAML flow sequence ("['a', 'b']") becomes a list;
// other list values are split on commas, except the keys in unsplit.
func overlayEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		section, key, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_")
		if !ok || !sections[section] || key == "" {
			continue
		}
		sub, _ := raw[section].(map[string]any)
		if sub == nil {
			sub = map[string]any{}
			raw[section] = sub
		}
		sub[key] = envValue(section+"."+key, value)
	}
}

func envValue(path, value string) any {
	if strings.HasPrefix(strings.TrimSpace(value), "[") {
		var list []any
		if err := yaml.Unmarshal([]byte(value), &list); err == nil {
			return list
		}
	}
	if unsplit[path] {
		return []any{value}
	}
	return value
}

func decode(raw map[string]any, out *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate checks enumerations, durations and keys.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("store.backend must be memory, file or redis, got %q", c.Store.Backend))
	}
	switch c.Classifier.Kind {
	case ClassifierKeyword, ClassifierOpenAI:
	default:
		errs = append(errs, fmt.Errorf("classifier.kind must be keyword or openai, got %q", c.Classifier.Kind))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, errors.New("store.ttl cannot be negative"))
	}
	if c.Store.LockTTL <= 0 {
		errs = append(errs, errors.New("store.lock_ttl must be positive"))
	}
	if c.Classifier.Timeout < 0 {
		errs = append(errs, errors.New("classifier.timeout cannot be negative"))
	}
	if c.Classifier.RateLimit < 0 {
		errs = append(errs, errors.New("classifier.rate_limit cannot be negative"))
	}
	for _, p := range c.Redact.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("redact.patterns: %w", err))
		}
	}
	if _, _, err := c.Store.Keys(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, nil, errors.New("store.fallback_keys requires store.encryption_key")
		}
		return nil, nil, nil
	}
	active, err = decodeKey("store.encryption_key", s.EncryptionKey)
	if err != nil {
		return nil, nil, err
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(fmt.Sprintf("store.fallback_keys[%d]", i), k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(field, value string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", field, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", field, len(key))
	}
	return key, nil
}
