package cves

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/ortelius/cve-catalog/database"
)

// GetQueryFields returns the advisory queries to be mounted in the root schema.
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		"cve": &graphql.Field{
			Type: CveType,
			Args: graphql.FieldConfigArgument{
				"cveId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				cveID := p.Args["cveId"].(string)

				record, err := db.GetCve(context.Background(), cveID)
				if errors.Is(err, database.ErrNotFound) {
					return nil, nil
				}
				if err != nil {
					return nil, err
				}
				return *record, nil
			},
		},
	}
}
