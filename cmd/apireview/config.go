package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/reoring/apireview/layout"
)

// Config is the optional YAML file passed with --config. Missing keys keep
// their defaults.
type Config struct {
	Listen   string          `yaml:"listen" validate:"required,hostname_port"`
	LogLevel string          `yaml:"logLevel" validate:"oneof=debug info warn error"`
	Language string          `yaml:"language" validate:"oneof=en ja"`
	Debounce time.Duration   `yaml:"debounce" validate:"gte=0"`
	Viewport Viewport        `yaml:"viewport"`
	Geometry layout.Geometry `yaml:"geometry"`
}

type Viewport struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

var configValidate = validator.New()

func defaultConfig() Config {
	return Config{
		Listen:   "127.0.0.1:8080",
		LogLevel: "info",
		Language: "en",
		Debounce: 200 * time.Millisecond,
		Viewport: Viewport{Width: 1600, Height: 900},
		Geometry: layout.DefaultGeometry(),
	}
}

// loadConfig reads path over the defaults. An empty path yields the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := configValidate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
