// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	InventoryBackendFile  = "file"
	InventoryBackendRedis = "redis"

	// SimulateWorkload asks the server to pick the active workload at startup.
	SimulateWorkload = -1
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port              string
	RedisAddr         string
	PostgresDSN       string
	InventoryBackend  string
	InventoryFile     string
	InventoryRedisKey string
	TotalWorkers      int
	ActiveWorkload    int
	ReferenceYear     int
	PredictionNoise   bool
	ModelPath         string
	MetricsInterval   time.Duration
	WebDir            string
	Email             EmailConfig
}

type EmailConfig struct {
	APIKey      string
	FromName    string
	FromAddress string
	To          string
}

// Enabled reports whether alerts can be mailed rather than only logged.
func (e EmailConfig) Enabled() bool {
	return e.APIKey != "" && e.FromAddress != "" && e.To != ""
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getenvDefault("PORT", "8080"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		InventoryBackend:  strings.ToLower(getenvDefault("INVENTORY_BACKEND", InventoryBackendFile)),
		InventoryFile:     getenvDefault("INVENTORY_FILE", "inventory.json"),
		InventoryRedisKey: getenvDefault("INVENTORY_REDIS_KEY", "inventory"),
		ModelPath:         os.Getenv("MODEL_PATH"),
		WebDir:            getenvDefault("WEB_DIR", "./web"),
		Email: EmailConfig{
			APIKey:      os.Getenv("EMAIL_API_KEY"),
			FromName:    getenvDefault("FROM_NAME", "Service Desk"),
			FromAddress: os.Getenv("FROM_ADDRESS"),
			To:          os.Getenv("ALERT_EMAIL_TO"),
		},
	}

	var err error
	if cfg.TotalWorkers, err = getenvInt("TOTAL_WORKERS", 8); err != nil {
		return nil, err
	}
	if cfg.ActiveWorkload, err = getenvInt("ACTIVE_WORKLOAD", SimulateWorkload); err != nil {
		return nil, err
	}
	if cfg.ReferenceYear, err = getenvInt("REFERENCE_YEAR", 2024); err != nil {
		return nil, err
	}
	if cfg.PredictionNoise, err = getenvBool("PREDICTION_NOISE", true); err != nil {
		return nil, err
	}
	if cfg.MetricsInterval, err = getenvDuration("METRICS_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.TotalWorkers <= 0 {
		return fmt.Errorf("%w: TOTAL_WORKERS must be positive, got %d", ErrInvalidConfig, c.TotalWorkers)
	}
	if c.ActiveWorkload < SimulateWorkload {
		return fmt.Errorf("%w: ACTIVE_WORKLOAD must be -1 or more, got %d", ErrInvalidConfig, c.ActiveWorkload)
	}
	if c.InventoryBackend != InventoryBackendFile && c.InventoryBackend != InventoryBackendRedis {
		return fmt.Errorf("%w: INVENTORY_BACKEND must be %q or %q, got %q", ErrInvalidConfig, InventoryBackendFile, InventoryBackendRedis, c.InventoryBackend)
	}
	if c.InventoryBackend == InventoryBackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("%w: INVENTORY_BACKEND=redis requires REDIS_ADDR", ErrInvalidConfig)
	}
	if c.MetricsInterval <= 0 {
		return fmt.Errorf("%w: METRICS_INTERVAL must be positive", ErrInvalidConfig)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, key, v)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, key, v)
	}
	return d, nil
}
