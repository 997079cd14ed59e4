package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port       string `yaml:"port"`
		AdminToken string `yaml:"admin_token"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Contest struct {
		LivenessWindow       string `yaml:"liveness_window"`        // default 30s
		HeartbeatInterval    string `yaml:"heartbeat_interval"`     // default 15s
		QuestionPollInterval string `yaml:"question_poll_interval"` // default 60s
		SettingsPollInterval string `yaml:"settings_poll_interval"` // default 10s
		QuestionCacheTTL     string `yaml:"question_cache_ttl"`     // default 10s
	} `yaml:"contest"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DurationOr parses a duration string or returns the fallback if empty or invalid.
func DurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
