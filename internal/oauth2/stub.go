package oauth2

import (
	"context"
	"fmt"
)

// StubGateway is a simple in-memory authorization-server gateway for
// testing. It records the decisions handed to it.
type StubGateway struct {
	requests map[string]*ConsentRequest

	// Accepted holds the decision passed to AcceptConsentRequest per challenge
	Accepted map[string]*ConsentDecision

	// Rejected holds the error code passed to RejectConsentRequest per challenge
	Rejected map[string]string

	// RedirectTo is returned from accept and reject calls
	RedirectTo string
}

// NewStubGateway creates an empty stub gateway
func NewStubGateway() *StubGateway {
	return &StubGateway{
		requests:   make(map[string]*ConsentRequest),
		Accepted:   make(map[string]*ConsentDecision),
		Rejected:   make(map[string]string),
		RedirectTo: "https://client.example.com/callback",
	}
}

// AddConsentRequest registers a consent request under its challenge
func (s *StubGateway) AddConsentRequest(request *ConsentRequest) *StubGateway {
	s.requests[request.Challenge] = request
	return s
}

// GetConsentRequest implements Gateway
func (s *StubGateway) GetConsentRequest(ctx context.Context, challenge string) (*ConsentRequest, error) {
	request, ok := s.requests[challenge]
	if !ok {
		return nil, fmt.Errorf("unknown consent challenge %s", challenge)
	}
	return request, nil
}

// AcceptConsentRequest implements Gateway
func (s *StubGateway) AcceptConsentRequest(ctx context.Context, challenge string, decision *ConsentDecision) (string, error) {
	if _, ok := s.requests[challenge]; !ok {
		return "", fmt.Errorf("unknown consent challenge %s", challenge)
	}
	s.Accepted[challenge] = decision
	return s.RedirectTo, nil
}

// RejectConsentRequest implements Gateway
func (s *StubGateway) RejectConsentRequest(ctx context.Context, challenge, errorCode, description string) (string, error) {
	if _, ok := s.requests[challenge]; !ok {
		return "", fmt.Errorf("unknown consent challenge %s", challenge)
	}
	s.Rejected[challenge] = errorCode
	return s.RedirectTo, nil
}
