package identity

import (
	"context"
	"fmt"
)

// StubGateway is a simple in-memory identity gateway for testing
type StubGateway struct {
	identities map[string]*Identity
	schemas    map[string][]byte
}

// NewStubGateway creates an empty stub gateway
func NewStubGateway() *StubGateway {
	return &StubGateway{
		identities: make(map[string]*Identity),
		schemas:    make(map[string][]byte),
	}
}

// AddIdentity registers an identity under its ID
func (s *StubGateway) AddIdentity(identity *Identity) *StubGateway {
	s.identities[identity.ID] = identity
	return s
}

// AddSchema registers a schema document under its ID
func (s *StubGateway) AddSchema(schemaID string, schemaJSON []byte) *StubGateway {
	s.schemas[schemaID] = schemaJSON
	return s
}

// GetIdentity implements Gateway
func (s *StubGateway) GetIdentity(ctx context.Context, id string) (*Identity, error) {
	identity, ok := s.identities[id]
	if !ok {
		return nil, fmt.Errorf("unknown identity %s", id)
	}
	return identity, nil
}

// GetIdentitySchema implements Gateway
func (s *StubGateway) GetIdentitySchema(ctx context.Context, schemaID string) ([]byte, error) {
	schemaJSON, ok := s.schemas[schemaID]
	if !ok {
		return nil, fmt.Errorf("unknown identity schema %s", schemaID)
	}
	return schemaJSON, nil
}
