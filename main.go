// Package main provides the entry point for the cve-catalog microservice:
// advisory ingestion over REST, Kafka and git sources, and the read API.
package main

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ortelius/cve-catalog/database"
	"github.com/ortelius/cve-catalog/internal/api"
	"github.com/ortelius/cve-catalog/internal/kafka"
	"github.com/ortelius/cve-catalog/internal/services"
	"github.com/ortelius/cve-catalog/schema"
	"github.com/ortelius/cve-catalog/util"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Initialize database connection
	db := database.InitializeDatabase()
	logger := database.Logger().Sugar()

	// One registry, shared by every validator
	registry := schema.NewRegistry()
	ingest := &services.IngestService{
		Validator: schema.NewValidator(registry),
		Cves:      db,
		Products:  db,
		Logger:    logger,
	}

	ctx := context.Background()

	// Kafka consumer is optional; the REST surface works without it
	if util.GetEnvDefault("KAFKA_ENABLED", "false") == "true" {
		if err := kafka.RunEventProcessor(ctx, ingest); err != nil {
			logger.Errorw("kafka event processor not started", "error", err)
		}
	}

	// Initial sync over the configured advisory repositories
	sourcesPath := util.GetEnvDefault("SOURCES_FILE", "sources.yaml")
	if util.FileExists(sourcesPath) {
		go runStartupSync(ctx, ingest, db, sourcesPath, logger)
	}

	app := api.NewFiberApp(db, ingest)

	port := util.GetEnvDefault("MS_PORT", "3000")
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func runStartupSync(ctx context.Context, ingest *services.IngestService, db database.DBConnection, sourcesPath string, logger *zap.SugaredLogger) {
	file, err := services.LoadSourcesFile(sourcesPath)
	if err != nil {
		logger.Errorw("failed to load sources file", "path", sourcesPath, "error", err)
		return
	}

	workers, err := strconv.Atoi(util.GetEnvDefault("INGEST_WORKERS", "4"))
	if err != nil || workers < 1 {
		workers = 4
	}

	for _, cfg := range file.Sources {
		source := services.GitSource{Config: cfg, DB: db}
		result, err := ingest.IngestBatch(ctx, source, workers)
		if errors.Is(err, services.ErrUpToDate) {
			logger.Infow("source up to date", "source", cfg.Name)
			continue
		}
		if err != nil {
			logger.Errorw("startup sync failed", "source", cfg.Name, "error", err)
			continue
		}
		logger.Infow("startup sync finished",
			"source", cfg.Name,
			"documents", result.Documents,
			"stored", result.Stored,
			"invalid", result.Invalid,
			"failed", result.Failed)
	}
}
