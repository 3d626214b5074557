package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	kratos "github.com/ory/kratos-client-go"
)

// KratosGateway implements Gateway against the Ory Kratos admin API.
type KratosGateway struct {
	client     *kratos.APIClient
	adminURL   string
	httpClient *http.Client
}

// KratosGatewayConfig configures the Kratos gateway
type KratosGatewayConfig struct {
	// AdminURL is the base URL of the Kratos admin API
	AdminURL string

	// HTTPClient overrides the default HTTP client, e.g. to inject a
	// fixture transport in tests
	HTTPClient *http.Client
}

// NewKratosGateway creates a gateway against the Kratos admin API.
func NewKratosGateway(cfg KratosGatewayConfig) (*KratosGateway, error) {
	if cfg.AdminURL == "" {
		return nil, fmt.Errorf("kratos admin URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	clientCfg := kratos.NewConfiguration()
	clientCfg.Servers = kratos.ServerConfigurations{{URL: strings.TrimRight(cfg.AdminURL, "/")}}
	clientCfg.HTTPClient = httpClient

	return &KratosGateway{
		client:     kratos.NewAPIClient(clientCfg),
		adminURL:   strings.TrimRight(cfg.AdminURL, "/"),
		httpClient: httpClient,
	}, nil
}

// GetIdentity implements Gateway
func (g *KratosGateway) GetIdentity(ctx context.Context, id string) (*Identity, error) {
	identity, _, err := g.client.IdentityAPI.GetIdentity(ctx, id).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity %s from kratos: %w", id, err)
	}

	return &Identity{
		ID:       identity.Id,
		SchemaID: identity.SchemaId,
		Traits:   identity.Traits,
	}, nil
}

// GetIdentitySchema implements Gateway. The schema endpoint is called
// directly instead of through the SDK because the SDK decodes the schema
// into a map, which loses property declaration order.
func (g *KratosGateway) GetIdentitySchema(ctx context.Context, schemaID string) ([]byte, error) {
	endpoint := g.adminURL + "/schemas/" + url.PathEscape(schemaID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity schema %s from kratos: %w", schemaID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kratos returned status %d for identity schema %s", resp.StatusCode, schemaID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity schema %s: %w", schemaID, err)
	}

	return body, nil
}
