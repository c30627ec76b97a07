package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Game struct {
		RoomTTLMinutes       int `yaml:"room_ttl_minutes"`
		SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
	} `yaml:"game"`

	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func defaultConfig() *Config {
	var config Config
	config.Server.Port = "8080"
	config.Game.RoomTTLMinutes = 30
	config.Game.SweepIntervalSeconds = 60
	config.NATS.Enabled = false
	config.NATS.URL = "nats://localhost:4222"
	return &config
}

// loadConfig builds the runtime configuration from defaults, an optional
// YAML file, and environment variable overrides, in that order.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Server.Port = getEnv("PORT", config.Server.Port)
	config.Game.RoomTTLMinutes = getEnvAsInt("ROOM_TTL_MINUTES", config.Game.RoomTTLMinutes)
	config.Game.SweepIntervalSeconds = getEnvAsInt("SWEEP_INTERVAL_SECONDS", config.Game.SweepIntervalSeconds)
	config.NATS.Enabled = getEnvAsBool("NATS_ENABLED", config.NATS.Enabled)
	config.NATS.URL = getEnv("NATS_URL", config.NATS.URL)

	return config, nil
}

func (c *Config) roomTTL() time.Duration {
	return time.Duration(c.Game.RoomTTLMinutes) * time.Minute
}

func (c *Config) sweepInterval() time.Duration {
	return time.Duration(c.Game.SweepIntervalSeconds) * time.Second
}
