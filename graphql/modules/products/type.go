// Package products defines the GraphQL types and queries for the product
// catalog.
package products

import "github.com/graphql-go/graphql"

// VersionChangeType represents a status flip at a point within a range.
var VersionChangeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "VersionChange",
	Fields: graphql.Fields{
		"at":     &graphql.Field{Type: graphql.String},
		"status": &graphql.Field{Type: graphql.String},
	},
})

// VersionRangeType represents one version-affectedness entry.
var VersionRangeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "VersionRange",
	Fields: graphql.Fields{
		"version":         &graphql.Field{Type: graphql.String},
		"status":          &graphql.Field{Type: graphql.String},
		"versionType":     &graphql.Field{Type: graphql.String},
		"lessThan":        &graphql.Field{Type: graphql.String},
		"lessThanOrEqual": &graphql.Field{Type: graphql.String},
		"changes":         &graphql.Field{Type: graphql.NewList(VersionChangeType)},
	},
})

// ProgramRoutineType represents a routine within an affected program.
var ProgramRoutineType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProgramRoutine",
	Fields: graphql.Fields{
		"name": &graphql.Field{Type: graphql.String},
	},
})

// ProductType represents a catalog document.
var ProductType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"vendor":          &graphql.Field{Type: graphql.String},
		"product":         &graphql.Field{Type: graphql.String},
		"collectionURL":   &graphql.Field{Type: graphql.String},
		"packageName":     &graphql.Field{Type: graphql.String},
		"cpes":            &graphql.Field{Type: graphql.NewList(graphql.String)},
		"modules":         &graphql.Field{Type: graphql.NewList(graphql.String)},
		"programFiles":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		"programRoutines": &graphql.Field{Type: graphql.NewList(ProgramRoutineType)},
		"platforms":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		"repo":            &graphql.Field{Type: graphql.String},
		"defaultStatus":   &graphql.Field{Type: graphql.String},
		"versions":        &graphql.Field{Type: graphql.NewList(VersionRangeType)},
		"cves":            &graphql.Field{Type: graphql.NewList(graphql.String)},
		"updated_at":      &graphql.Field{Type: graphql.String},
	},
})
