// Package gql exposes news items, comments and users over GraphQL.
package gql

import (
	_ "embed"

	"github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

// maxDepth bounds nested comment queries.
const maxDepth = 12

// NewSchema parses the schema and binds it to r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, r, graphql.MaxDepth(maxDepth))
}
