// Package config loads picker settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PICKER_"

var validate = validator.New()

type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Storage   StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	Generator GeneratorConfig `yaml:"generator" envPrefix:"GENERATOR_"`
	Analysis  AnalysisConfig  `yaml:"analysis" envPrefix:"ANALYSIS_"`
	Events    EventsConfig    `yaml:"events" envPrefix:"EVENTS_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr" env:"ADDR" validate:"required"`
	Token          string        `yaml:"token" env:"TOKEN"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" validate:"gt=0"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" validate:"gte=0"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"DRIVER" validate:"oneof=sqlite badger"`
	// Path is a SQLite file or Badger directory. Empty selects the default
	// location under the user config dir.
	Path string `yaml:"path" env:"PATH"`
}

type GeneratorConfig struct {
	// Source selects the primary entropy source: crypto, chacha20, mt19937 or
	// hybrid.
	Source      string        `yaml:"source" env:"SOURCE" validate:"oneof=crypto chacha20 mt19937 hybrid"`
	MainCount   int           `yaml:"main_count" env:"MAIN_COUNT" validate:"gte=0,lte=1000"`
	MainMin     int           `yaml:"main_min" env:"MAIN_MIN"`
	MainMax     int           `yaml:"main_max" env:"MAIN_MAX" validate:"gtefield=MainMin"`
	SpecialMin  int           `yaml:"special_min" env:"SPECIAL_MIN"`
	SpecialMax  int           `yaml:"special_max" env:"SPECIAL_MAX" validate:"gtefield=SpecialMin"`
	Pacing      time.Duration `yaml:"pacing" env:"PACING" validate:"gte=0"`
	HistorySize int           `yaml:"history_size" env:"HISTORY_SIZE" validate:"gte=0"`
}

type AnalysisConfig struct {
	// DrawsFile replaces the built-in historical draws when set.
	DrawsFile string `yaml:"draws_file" env:"DRAWS_FILE"`
	CacheSize int    `yaml:"cache_size" env:"CACHE_SIZE" validate:"gt=0"`
	Top       int    `yaml:"top" env:"TOP" validate:"gt=0"`
}

type EventsConfig struct {
	// NATSURL enables publishing when set.
	NATSURL string `yaml:"nats_url" env:"NATS_URL"`
	Subject string `yaml:"subject" env:"SUBJECT" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json" env:"JSON"`
}

// Default returns the built-in configuration: Powerball rules, SQLite storage
// and no event publishing.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			RequestTimeout: 30 * time.Second,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{Driver: "sqlite"},
		Generator: GeneratorConfig{
			Source:      "crypto",
			MainCount:   5,
			MainMin:     1,
			MainMax:     69,
			SpecialMin:  1,
			SpecialMax:  26,
			HistorySize: 20,
		},
		Analysis: AnalysisConfig{CacheSize: 256, Top: 5},
		Events:   EventsConfig{Subject: "picker.numbers.generated"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, applies PICKER_* environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and that the main pick fits its range.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	g := c.Generator
	if g.MainCount > 0 && uint64(g.MainCount-1) > uint64(g.MainMax)-uint64(g.MainMin) {
		return errors.New("generator: main_count exceeds the main range")
	}
	return nil
}
