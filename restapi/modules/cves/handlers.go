// Package cves implements the REST API handlers for advisory records.
package cves

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ortelius/cve-catalog/database"
	"github.com/ortelius/cve-catalog/internal/services"
)

// IngestCve accepts one raw advisory document and runs it through the
// ingest pipeline. The response carries the validation report and the
// reconciliation summary; an invalid document is still ingested, so the
// status is 200 unless the JSON itself cannot be parsed.
func IngestCve(ingest *services.IngestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := ingest.IngestDocument(c.Context(), c.Body())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(result)
	}
}

// GetCve returns a stored advisory record by CVE ID.
func GetCve(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cveID := c.Params("id")

		record, err := db.GetCve(c.Context(), cveID)
		if errors.Is(err, database.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "CVE not found: " + cveID,
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(record)
	}
}
