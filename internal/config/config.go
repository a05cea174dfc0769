// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Postgres holds database connection settings.
type Postgres struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
}

// DSN renders the settings as a pgx connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

// Config holds every runtime knob of the recorder.
type Config struct {
	TzktURL        string
	BlockPort      int
	HeartbeatURL   string
	MetricsAddr    string
	CheckpointPath string
	TezCtezPool    string
	IndexingStart  int64
	ReorgLag       int64
	TzktPageLimit  int
	RegistryTTL    time.Duration
	Postgres       Postgres
}

// Load reads configuration from the environment, first merging a .env file
// when one is present. Every value has a working default except the Postgres
// password.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := &Config{
		TzktURL:        envString("TZKT_URL", "https://api.tzkt.io/v1"),
		HeartbeatURL:   envString("HEARTBEAT", ""),
		MetricsAddr:    envString("METRICS_ADDR", ":9090"),
		CheckpointPath: envString("CHECKPOINT_PATH", "/data/level.json"),
		TezCtezPool:    envString("TEZ_CTEZ_POOL", "KT1CAYNQGvYSF5UvHK21grMrKpe2563w9UcX"),
		Postgres: Postgres{
			User:     envString("POSTGRES_USER", "master"),
			Password: envString("POSTGRES_PASSWORD", ""),
			Host:     envString("POSTGRES_HOST", "localhost"),
			Database: envString("POSTGRES_DB", "plenty"),
		},
	}

	var err error
	if cfg.BlockPort, err = envInt("BLOCK_PORT", 6024); err != nil {
		return nil, err
	}
	if cfg.Postgres.Port, err = envInt("POSTGRES_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.TzktPageLimit, err = envInt("TZKT_LIMIT", 1000); err != nil {
		return nil, err
	}
	if cfg.IndexingStart, err = envInt64("INDEXING_START", 2525525); err != nil {
		return nil, err
	}
	if cfg.ReorgLag, err = envInt64("REORG_LAG", 2); err != nil {
		return nil, err
	}

	ttlMillis, err := envInt64("DATA_TTL", 60000)
	if err != nil {
		return nil, err
	}
	cfg.RegistryTTL = time.Duration(ttlMillis) * time.Millisecond

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

func envInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return n, nil
}
