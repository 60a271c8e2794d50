// Package cves defines the GraphQL types and queries for advisory records.
package cves

import (
	"github.com/graphql-go/graphql"

	"github.com/ortelius/cve-catalog/graphql/modules/products"
	"github.com/ortelius/cve-catalog/model"
)

// CveMetadataType represents advisory assignment metadata.
var CveMetadataType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CveMetadata",
	Fields: graphql.Fields{
		"cveId":             &graphql.Field{Type: graphql.String},
		"assignerOrgId":     &graphql.Field{Type: graphql.String},
		"assignerShortName": &graphql.Field{Type: graphql.String},
		"state":             &graphql.Field{Type: graphql.String},
		"dateReserved":      &graphql.Field{Type: graphql.String},
		"datePublished":     &graphql.Field{Type: graphql.String},
		"dateUpdated":       &graphql.Field{Type: graphql.String},
		"serial":            &graphql.Field{Type: graphql.Int},
	},
})

// ReferenceType represents an external reference.
var ReferenceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Reference",
	Fields: graphql.Fields{
		"url":  &graphql.Field{Type: graphql.String},
		"name": &graphql.Field{Type: graphql.String},
		"tags": &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

// AffectedProductType represents one affected entry of an advisory.
var AffectedProductType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AffectedProduct",
	Fields: graphql.Fields{
		"vendor":        &graphql.Field{Type: graphql.String},
		"product":       &graphql.Field{Type: graphql.String},
		"packageName":   &graphql.Field{Type: graphql.String},
		"collectionURL": &graphql.Field{Type: graphql.String},
		"platforms":     &graphql.Field{Type: graphql.NewList(graphql.String)},
		"defaultStatus": &graphql.Field{Type: graphql.String},
		"versions":      &graphql.Field{Type: graphql.NewList(products.VersionRangeType)},
	},
})

// CvssScoreType flattens the per-version CVSS variants into one shape.
var CvssScoreType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CvssScore",
	Fields: graphql.Fields{
		"version": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if score, ok := p.Source.(model.CvssMetric); ok {
					return score.CvssVersion(), nil
				}
				return nil, nil
			},
		},
		"vector": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if score, ok := p.Source.(model.CvssMetric); ok {
					return score.Vector(), nil
				}
				return nil, nil
			},
		},
		"score": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if score, ok := p.Source.(model.CvssMetric); ok {
					return score.Score(), nil
				}
				return nil, nil
			},
		},
		"severity": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if score, ok := p.Source.(model.CvssMetric); ok {
					return score.Severity(), nil
				}
				return nil, nil
			},
		},
	},
})

// CveType represents a stored advisory record.
var CveType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Cve",
	Fields: graphql.Fields{
		"cve_id":      &graphql.Field{Type: graphql.String},
		"dataType":    &graphql.Field{Type: graphql.String},
		"dataVersion": &graphql.Field{Type: graphql.String},
		"cveMetadata": &graphql.Field{Type: CveMetadataType},
		"title": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if record, ok := p.Source.(model.Cve); ok {
					return record.Title(), nil
				}
				return nil, nil
			},
		},
		"description": &graphql.Field{
			Type: graphql.String,
			Args: graphql.FieldConfigArgument{
				"lang": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "en"},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				record, ok := p.Source.(model.Cve)
				if !ok {
					return nil, nil
				}
				lang, _ := p.Args["lang"].(string)
				return record.Description(lang), nil
			},
		},
		"affected": &graphql.Field{
			Type: graphql.NewList(AffectedProductType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if record, ok := p.Source.(model.Cve); ok {
					return record.AffectedProducts(), nil
				}
				return nil, nil
			},
		},
		"references": &graphql.Field{
			Type: graphql.NewList(ReferenceType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if record, ok := p.Source.(model.Cve); ok {
					return record.Containers.Cna.References, nil
				}
				return nil, nil
			},
		},
		"scores": &graphql.Field{
			Type: graphql.NewList(CvssScoreType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if record, ok := p.Source.(model.Cve); ok {
					return record.CvssScores(), nil
				}
				return nil, nil
			},
		},
	},
})
