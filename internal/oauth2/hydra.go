package oauth2

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	hydra "github.com/ory/hydra-client-go/v2"
)

// HydraGateway implements Gateway against the Ory Hydra admin API.
type HydraGateway struct {
	client *hydra.APIClient
}

// HydraGatewayConfig configures the Hydra gateway
type HydraGatewayConfig struct {
	// AdminURL is the base URL of the Hydra admin API
	AdminURL string

	// HTTPClient overrides the default HTTP client, e.g. to inject a
	// fixture transport in tests
	HTTPClient *http.Client
}

// NewHydraGateway creates a gateway against the Hydra admin API.
func NewHydraGateway(cfg HydraGatewayConfig) (*HydraGateway, error) {
	if cfg.AdminURL == "" {
		return nil, fmt.Errorf("hydra admin URL is required")
	}

	clientCfg := hydra.NewConfiguration()
	clientCfg.Servers = hydra.ServerConfigurations{{URL: strings.TrimRight(cfg.AdminURL, "/")}}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &HydraGateway{
		client: hydra.NewAPIClient(clientCfg),
	}, nil
}

// GetConsentRequest implements Gateway
func (g *HydraGateway) GetConsentRequest(ctx context.Context, challenge string) (*ConsentRequest, error) {
	request, _, err := g.client.OAuth2API.GetOAuth2ConsentRequest(ctx).
		ConsentChallenge(challenge).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch consent request from hydra: %w", err)
	}

	return &ConsentRequest{
		Challenge:         request.GetChallenge(),
		Subject:           request.GetSubject(),
		RequestedScopes:   request.GetRequestedScope(),
		RequestedAudience: request.GetRequestedAccessTokenAudience(),
		Skip:              request.GetSkip(),
	}, nil
}

// AcceptConsentRequest implements Gateway
func (g *HydraGateway) AcceptConsentRequest(ctx context.Context, challenge string, decision *ConsentDecision) (string, error) {
	session := hydra.NewAcceptOAuth2ConsentRequestSession()
	if len(decision.IDTokenClaims) > 0 {
		session.SetIdToken(map[string]interface{}(decision.IDTokenClaims))
	}
	if len(decision.AccessTokenClaims) > 0 {
		session.SetAccessToken(map[string]interface{}(decision.AccessTokenClaims))
	}

	accept := hydra.NewAcceptOAuth2ConsentRequest()
	accept.SetGrantScope(decision.GrantScopes)
	accept.SetGrantAccessTokenAudience(decision.GrantAudience)
	accept.SetSession(*session)
	if decision.Remember {
		accept.SetRemember(true)
		accept.SetRememberFor(decision.RememberFor)
	}

	redirect, _, err := g.client.OAuth2API.AcceptOAuth2ConsentRequest(ctx).
		ConsentChallenge(challenge).
		AcceptOAuth2ConsentRequest(*accept).
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to accept consent request with hydra: %w", err)
	}

	return redirect.GetRedirectTo(), nil
}

// RejectConsentRequest implements Gateway
func (g *HydraGateway) RejectConsentRequest(ctx context.Context, challenge, errorCode, description string) (string, error) {
	reject := hydra.NewRejectOAuth2Request()
	reject.SetError(errorCode)
	reject.SetErrorDescription(description)

	redirect, _, err := g.client.OAuth2API.RejectOAuth2ConsentRequest(ctx).
		ConsentChallenge(challenge).
		RejectOAuth2Request(*reject).
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to reject consent request with hydra: %w", err)
	}

	return redirect.GetRedirectTo(), nil
}
