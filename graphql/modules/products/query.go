package products

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/ortelius/cve-catalog/database"
)

// GetQueryFields returns the product queries to be mounted in the root schema.
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		"product": &graphql.Field{
			Type: ProductType,
			Args: graphql.FieldConfigArgument{
				"vendor":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"product": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				vendor := p.Args["vendor"].(string)
				product := p.Args["product"].(string)

				result, err := db.GetProduct(context.Background(), vendor, product)
				if errors.Is(err, database.ErrNotFound) {
					return nil, nil
				}
				if err != nil {
					return nil, err
				}
				return *result, nil
			},
		},
		"products": &graphql.Field{
			Type: graphql.NewList(ProductType),
			Args: graphql.FieldConfigArgument{
				"vendor": &graphql.ArgumentConfig{Type: graphql.String},
				"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				vendor, _ := p.Args["vendor"].(string)
				limit, _ := p.Args["limit"].(int)

				return db.ListProducts(context.Background(), vendor, limit)
			},
		},
	}
}
