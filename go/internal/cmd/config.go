package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/triviahub/go/internal/trivia"
)

// Config is the YAML application configuration. Every field has a working
// default so the file is optional.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Game struct {
		DefaultTimeLimitSec int `yaml:"default_time_limit_sec"`
		AttemptsPerRound    int `yaml:"attempts_per_round"`
		MinPlayersToStart   int `yaml:"min_players_to_start"`
		RotateDelaySec      int `yaml:"rotate_delay_sec"`
	} `yaml:"game"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No file means defaults only.
			return &config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// gameConfig converts the YAML game section into engine rules, leaving
// defaults in place for unset fields.
func (c *Config) gameConfig() trivia.Config {
	cfg := trivia.DefaultConfig()
	if c.Game.DefaultTimeLimitSec > 0 {
		cfg.DefaultTimeLimitSec = c.Game.DefaultTimeLimitSec
	}
	if c.Game.AttemptsPerRound > 0 {
		cfg.AttemptsPerRound = c.Game.AttemptsPerRound
	}
	if c.Game.MinPlayersToStart > 0 {
		cfg.MinPlayersToStart = c.Game.MinPlayersToStart
	}
	if c.Game.RotateDelaySec > 0 {
		cfg.RotateDelay = time.Duration(c.Game.RotateDelaySec) * time.Second
	}
	return cfg
}

// addr resolves the listen address: env PORT wins over the config file.
func (c *Config) addr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return ":8080"
}
