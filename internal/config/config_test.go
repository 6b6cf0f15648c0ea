package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATA_LAKE_BUCKET_NAME", "lake")
	t.Setenv("DATABASE", "lake_db")
	t.Setenv("OUTPUT_LOCATION", "s3://results/")

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.ChunkSize != 1000 {
		t.Fatalf("ChunkSize = %d", cfg.ChunkSize)
	}
	if cfg.QueryMaxWait != 2*time.Minute {
		t.Fatalf("QueryMaxWait = %s", cfg.QueryMaxWait)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATA_LAKE_BUCKET_NAME", "lake")
	t.Setenv("DATABASE", "lake_db")
	t.Setenv("OUTPUT_LOCATION", "s3://results/")
	t.Setenv("UPLOAD_CHUNK_SIZE", "500")
	t.Setenv("QUERY_MAX_WAIT", "30s")

	cfg := FromEnv()
	if cfg.ChunkSize != 500 {
		t.Fatalf("ChunkSize = %d", cfg.ChunkSize)
	}
	if cfg.QueryMaxWait != 30*time.Second {
		t.Fatalf("QueryMaxWait = %s", cfg.QueryMaxWait)
	}
}

func TestValidateMissingBucket(t *testing.T) {
	cfg := Config{Database: "db", OutputLocation: "s3://x/", ChunkSize: 1000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
