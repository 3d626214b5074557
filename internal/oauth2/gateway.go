package oauth2

import (
	"context"

	"github.com/project-kessel/spice/internal/claims"
)

// ConsentRequest is an in-flight consent challenge as reported by the
// authorization server.
type ConsentRequest struct {
	// Challenge identifies the consent request
	Challenge string

	// Subject is the authenticated identity's ID, set by the login step
	Subject string

	// RequestedScopes is the scope list the client asked for
	RequestedScopes []string

	// RequestedAudience is the access token audience the client asked for
	RequestedAudience []string

	// Skip is set when the authorization server remembers a previous
	// consent. This service always grants, so Skip changes nothing here.
	Skip bool
}

// ConsentDecision is the accept payload for a consent request: which
// scopes and audiences to grant and the session data to attach.
type ConsentDecision struct {
	GrantScopes   []string
	GrantAudience []string

	IDTokenClaims     claims.Claims
	AccessTokenClaims claims.Claims

	// Remember asks the authorization server to remember this consent
	// for RememberFor seconds (0 means indefinitely)
	Remember    bool
	RememberFor int64
}

// Gateway is the authorization-server surface this service depends on.
type Gateway interface {
	// GetConsentRequest fetches the consent request for a challenge
	GetConsentRequest(ctx context.Context, challenge string) (*ConsentRequest, error)

	// AcceptConsentRequest accepts the consent request and returns the
	// URL to redirect the browser to
	AcceptConsentRequest(ctx context.Context, challenge string, decision *ConsentDecision) (string, error)

	// RejectConsentRequest rejects the consent request with an OAuth2
	// error code and returns the URL to redirect the browser to
	RejectConsentRequest(ctx context.Context, challenge, errorCode, description string) (string, error)
}
