package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/data-lake-api/internal/api"
	"github.com/yourorg/data-lake-api/internal/athena"
	"github.com/yourorg/data-lake-api/internal/config"
	"github.com/yourorg/data-lake-api/internal/ingest"
	"github.com/yourorg/data-lake-api/internal/metrics"
	"github.com/yourorg/data-lake-api/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Structured logger (zap)
	zl := newZap(cfg.LogLevel)
	defer zl.Sync()

	// Metrics server
	metrics.Init()
	go func() {
		_ = metrics.Serve(cfg.MetricsAddr)
	}()

	store, err := storage.NewS3(ctx)
	if err != nil {
		log.Fatalf("s3 init: %v", err)
	}
	engine, err := athena.New(ctx, cfg.Database, cfg.OutputLocation, athena.Options{
		PollInterval: cfg.QueryPollInterval,
		MaxWait:      cfg.QueryMaxWait,
	}, zl)
	if err != nil {
		log.Fatalf("athena init: %v", err)
	}
	pipeline := ingest.NewPipeline(store, cfg.DataLakeBucket, cfg.ChunkSize, zl)

	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20 // 32MB

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	api.NewHandler(pipeline, engine, zl).Register(r)

	zl.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("bucket", cfg.DataLakeBucket),
		zap.String("database", cfg.Database),
		zap.String("metrics", cfg.MetricsAddr))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func newZap(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
