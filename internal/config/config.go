// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds everything the API process needs to run.
type Config struct {
	Port        string
	MetricsAddr string
	LogLevel    string

	// Data lake.
	DataLakeBucket string
	ChunkSize      int

	// Athena.
	Database       string
	OutputLocation string // s3:// prefix for query result sets

	// Query poll bounds.
	QueryPollInterval time.Duration
	QueryMaxWait      time.Duration
}

// FromEnv loads configuration from environment variables.
func FromEnv() Config {
	return Config{
		Port:              getEnv("PORT", "8080"),
		MetricsAddr:       getEnv("METRICS_ADDR", ":9090"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DataLakeBucket:    os.Getenv("DATA_LAKE_BUCKET_NAME"),
		ChunkSize:         getEnvInt("UPLOAD_CHUNK_SIZE", 1000),
		Database:          os.Getenv("DATABASE"),
		OutputLocation:    os.Getenv("OUTPUT_LOCATION"),
		QueryPollInterval: getEnvDuration("QUERY_POLL_INTERVAL", 250*time.Millisecond),
		QueryMaxWait:      getEnvDuration("QUERY_MAX_WAIT", 2*time.Minute),
	}
}

// Validate checks the fields that have no usable default.
func (c Config) Validate() error {
	if c.DataLakeBucket == "" {
		return errors.New("DATA_LAKE_BUCKET_NAME is required")
	}
	if c.Database == "" {
		return errors.New("DATABASE is required")
	}
	if c.OutputLocation == "" {
		return errors.New("OUTPUT_LOCATION is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("UPLOAD_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		if n != 0 {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
