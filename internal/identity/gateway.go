package identity

import "context"

// Identity is the slice of an identity-server identity this service
// reads: who it is, which schema its traits follow, and the trait
// document itself.
type Identity struct {
	// ID is the identity server's identifier for the identity
	ID string

	// SchemaID names the identity schema version the traits validate against
	SchemaID string

	// Traits is the decoded trait document. The engine only reads it.
	Traits any
}

// Gateway is the identity-server surface this service depends on.
type Gateway interface {
	// GetIdentity fetches an identity by ID
	GetIdentity(ctx context.Context, id string) (*Identity, error)

	// GetIdentitySchema fetches an identity schema document as raw JSON
	// text. Raw text rather than a decoded value: schema property
	// declaration order is significant to the walker and a generic JSON
	// decode would lose it.
	GetIdentitySchema(ctx context.Context, schemaID string) ([]byte, error)
}
