package service

import (
	"context"

	"github.com/project-kessel/spice/internal/cache"
	"github.com/project-kessel/spice/internal/identity"
	"github.com/project-kessel/spice/internal/schema"
)

// NewSchemaLoader builds the cache loader that turns a schema ID into an
// immutable snapshot: fetch the schema document from the identity
// server, walk its traits subtree, and parse its scope-configuration
// block. Warnings are carried on the snapshot so both the validate
// command and the consent path can surface them.
func NewSchemaLoader(identities identity.Gateway, walker *schema.Walker, parser *schema.Parser) cache.Loader {
	return func(ctx context.Context, schemaID string) (*cache.Snapshot, error) {
		schemaJSON, err := identities.GetIdentitySchema(ctx, schemaID)
		if err != nil {
			return nil, err
		}

		pointers, walkWarnings := walker.Walk(schemaJSON)
		scopes, parseWarnings := parser.Parse(schemaJSON, pointers)

		return &cache.Snapshot{
			SchemaID: schemaID,
			Pointers: pointers,
			Scopes:   scopes,
			Warnings: append(walkWarnings, parseWarnings...),
		}, nil
	}
}
