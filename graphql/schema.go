// Package graphql assembles the read-only query schema.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/ortelius/cve-catalog/database"
	"github.com/ortelius/cve-catalog/graphql/modules/cves"
	"github.com/ortelius/cve-catalog/graphql/modules/products"
)

var db database.DBConnection

// InitDB stores the connection the resolvers use.
func InitDB(conn database.DBConnection) {
	db = conn
}

// CreateSchema builds the root query from the module field sets.
func CreateSchema() (graphql.Schema, error) {
	queryFields := graphql.Fields{}
	for name, field := range cves.GetQueryFields(db) {
		queryFields[name] = field
	}
	for name, field := range products.GetQueryFields(db) {
		queryFields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: queryFields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}
