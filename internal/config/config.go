package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" validate:"omitempty,numeric"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	OpenTDB struct {
		BaseURL string `yaml:"base_url" validate:"omitempty,url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"opentdb"`
	Quiz struct {
		// Source selects the question provider: opentdb, postgres or static.
		Source      string `yaml:"source" validate:"omitempty,oneof=opentdb postgres static"`
		CategoryTTL string `yaml:"category_ttl"`
		TimerReset  string `yaml:"timer_reset" validate:"omitempty,oneof=difficulty easy"`
		Durations   struct {
			Easy   int `yaml:"easy" validate:"gte=0"`
			Medium int `yaml:"medium" validate:"gte=0"`
			Hard   int `yaml:"hard" validate:"gte=0"`
		} `yaml:"durations"`
	} `yaml:"quiz"`
	Export struct {
		Context string `yaml:"context"`
	} `yaml:"export"`
}

// Load reads YAML config from path and validates it.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports every failing field.
func Validate(cfg Config) error {
	if cfg.Quiz.Source == "postgres" && cfg.Postgres.URL == "" {
		return errors.New("config: quiz.source postgres requires postgres.url")
	}
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fmt.Sprintf("field '%s' failed '%s' (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config validation errors:\n- %s", strings.Join(messages, "\n- "))
}

// ExportContext is the prefix used in export file names.
func (c Config) ExportContext() string {
	if c.Export.Context == "" {
		return "trivia"
	}
	return c.Export.Context
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
