// Package sync implements the REST API handler that triggers a batch run
// over the configured advisory repositories.
package sync

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ortelius/cve-catalog/database"
	"github.com/ortelius/cve-catalog/internal/services"
	"github.com/ortelius/cve-catalog/util"
)

// TriggerSync starts a background batch run over every source in the
// sources file and returns immediately. Repositories whose head commit
// matches the stored cursor are skipped.
func TriggerSync(ingest *services.IngestService, db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sourcesPath := util.GetEnvDefault("SOURCES_FILE", "sources.yaml")
		if !util.FileExists(sourcesPath) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "no sources file configured: " + sourcesPath,
			})
		}

		file, err := services.LoadSourcesFile(sourcesPath)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		workers, err := strconv.Atoi(util.GetEnvDefault("INGEST_WORKERS", "4"))
		if err != nil || workers < 1 {
			workers = 4
		}

		go runSync(ingest, db, file.Sources, workers)

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status":  "sync started",
			"sources": len(file.Sources),
		})
	}
}

func runSync(ingest *services.IngestService, db database.DBConnection, sources []services.GitSourceConfig, workers int) {
	ctx := context.Background()
	for _, cfg := range sources {
		source := services.GitSource{Config: cfg, DB: db}
		result, err := ingest.IngestBatch(ctx, source, workers)
		if errors.Is(err, services.ErrUpToDate) {
			ingest.Logger.Infow("source up to date", "source", cfg.Name)
			continue
		}
		if err != nil {
			ingest.Logger.Errorw("sync failed", "source", cfg.Name, "error", err)
			continue
		}
		ingest.Logger.Infow("sync finished",
			"source", cfg.Name,
			"documents", result.Documents,
			"stored", result.Stored,
			"invalid", result.Invalid,
			"failed", result.Failed)
	}
}
