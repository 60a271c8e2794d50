// Package restapi provides HTTP handlers for the REST API including GraphQL support.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/ortelius/cve-catalog/database"
	"github.com/ortelius/cve-catalog/internal/services"
	"github.com/ortelius/cve-catalog/restapi/modules/cves"
	"github.com/ortelius/cve-catalog/restapi/modules/products"
	"github.com/ortelius/cve-catalog/restapi/modules/sync"
)

// SetupRoutes mounts the REST and GraphQL routes.
func SetupRoutes(app *fiber.App, db database.DBConnection, ingest *services.IngestService, schema graphql.Schema) {
	api := app.Group("/api/v1")

	api.Post("/graphql", GraphQLHandler(schema))

	api.Post("/cves", cves.IngestCve(ingest))
	api.Get("/cves/:id", cves.GetCve(db))

	api.Get("/products", products.ListProducts(db))
	api.Get("/products/:vendor/:product", products.GetProduct(db))
	api.Get("/products/:vendor/:product/affected", products.CheckAffected(db))

	api.Post("/sync", sync.TriggerSync(ingest, db))
}
