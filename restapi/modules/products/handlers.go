// Package products implements the REST API handlers for the product catalog.
package products

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/ortelius/cve-catalog/database"
	"github.com/ortelius/cve-catalog/util"
)

// ListProducts returns catalog documents, optionally filtered by vendor.
func ListProducts(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vendor := c.Query("vendor")
		limit := c.QueryInt("limit")

		list, err := db.ListProducts(c.Context(), vendor, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"count":    len(list),
			"products": list,
		})
	}
}

// GetProduct returns one catalog document by its (vendor, product) key.
func GetProduct(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vendor, product := pathKey(c)

		p, err := db.GetProduct(c.Context(), vendor, product)
		if errors.Is(err, database.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "product not found: " + vendor + "/" + product,
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(p)
	}
}

// CheckAffected evaluates a concrete version against a product's stored
// affectedness facts, using the comparator each range's versionType names.
func CheckAffected(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vendor, product := pathKey(c)
		version := c.Query("version")
		if version == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "version query parameter is required",
			})
		}

		p, err := db.GetProduct(c.Context(), vendor, product)
		if errors.Is(err, database.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "product not found: " + vendor + "/" + product,
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		status, covered := util.VersionStatus(version, p.Versions)
		if !covered {
			status = p.DefaultStatus
			if status == "" {
				status = "unknown"
			}
		}

		return c.JSON(fiber.Map{
			"vendor":   p.Vendor,
			"product":  p.Product,
			"version":  version,
			"status":   status,
			"affected": util.IsVersionAffected(version, p),
			"cves":     p.Cves,
		})
	}
}

// pathKey decodes the vendor/product path parameters; names may carry
// URL-encoded spaces.
func pathKey(c *fiber.Ctx) (string, string) {
	vendor := c.Params("vendor")
	product := c.Params("product")
	if decoded, err := url.QueryUnescape(vendor); err == nil {
		vendor = decoded
	}
	if decoded, err := url.QueryUnescape(product); err == nil {
		product = decoded
	}
	return vendor, product
}
