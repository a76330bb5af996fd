package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcdev12/roulettedraft/go/internal/dbconfig"
	"gopkg.in/yaml.v3"
)

// Config is read from an optional YAML file, then overridden by the environment.
type Config struct {
	Port        string   `yaml:"port"`
	StoreDriver string   `yaml:"store_driver"` // postgres | memory
	CORSOrigins []string `yaml:"cors_origins"`

	Draft struct {
		TurnSeconds  int           `yaml:"turn_seconds"`
		TickInterval time.Duration `yaml:"tick_interval"`
	} `yaml:"draft"`

	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`

	Redis struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"redis"`

	Catalog struct {
		TTL  time.Duration `yaml:"ttl"`
		Seed string        `yaml:"seed"`
	} `yaml:"catalog"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	Database dbconfig.Config `yaml:"-"`
}

func defaultConfig() *Config {
	cfg := &Config{
		Port:        "8080",
		StoreDriver: "postgres",
		CORSOrigins: []string{"*"},
	}
	cfg.Draft.TurnSeconds = 30
	cfg.Draft.TickInterval = time.Second
	cfg.NATS.URL = "nats://127.0.0.1:4222"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Catalog.TTL = 10 * time.Minute
	cfg.Log.Level = "info"
	return cfg
}

// loadConfig reads path if it exists and applies environment overrides.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.StoreDriver = getEnv("STORE_DRIVER", cfg.StoreDriver)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}
	cfg.Draft.TurnSeconds = getEnvAsInt("TURN_SECONDS", cfg.Draft.TurnSeconds)
	cfg.Draft.TickInterval = getEnvAsDuration("TICK_INTERVAL", cfg.Draft.TickInterval)
	cfg.NATS.Enabled = getEnvAsBool("NATS_ENABLED", cfg.NATS.Enabled)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Catalog.TTL = getEnvAsDuration("CATALOG_TTL", cfg.Catalog.TTL)
	cfg.Catalog.Seed = getEnv("CATALOG_SEED", cfg.Catalog.Seed)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Pretty = getEnvAsBool("LOG_PRETTY", cfg.Log.Pretty)
	cfg.Database = dbconfig.NewConfigFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StoreDriver != "postgres" && c.StoreDriver != "memory" {
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.StoreDriver == "memory" && c.Catalog.Seed == "" {
		return errors.New("the memory store needs CATALOG_SEED")
	}
	if c.Draft.TurnSeconds < 1 {
		return fmt.Errorf("turn seconds must be positive, got %d", c.Draft.TurnSeconds)
	}
	if c.Draft.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.Draft.TickInterval)
	}
	return nil
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
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
