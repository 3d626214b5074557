package config

import (
	"fmt"
	"log/slog"

	"github.com/project-kessel/spice/internal/cache"
	"github.com/project-kessel/spice/internal/claims"
	"github.com/project-kessel/spice/internal/identity"
	"github.com/project-kessel/spice/internal/oauth2"
	"github.com/project-kessel/spice/internal/probe"
	"github.com/project-kessel/spice/internal/schema"
	"github.com/project-kessel/spice/internal/server"
	"github.com/project-kessel/spice/internal/service"
)

// Provider constructs all application components from configuration.
// This is the main entry point for building a configured spice instance.
type Provider struct {
	config *Config

	// Lazily constructed components (cached after first call)
	logger          *slog.Logger
	observer        service.ConsentObserver
	oauth2Gateway   oauth2.Gateway
	identityGateway identity.Gateway
	schemaCache     *cache.SchemaCache
	claimsFilter    claims.Filter
	consentService  *service.ConsentService
}

// NewProvider creates a new provider from configuration
func NewProvider(config *Config) *Provider {
	return &Provider{
		config: config,
	}
}

// Logger returns the configured logger
func (p *Provider) Logger() (*slog.Logger, error) {
	if p.logger != nil {
		return p.logger, nil
	}

	logger, err := NewLogger(p.config.Observability)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	p.logger = logger
	return logger, nil
}

// SetObserver sets the consent observer for all components built by this provider.
// Must be called before ConsentService() or any method that depends on the observer.
func (p *Provider) SetObserver(observer service.ConsentObserver) {
	p.observer = observer
}

// Observer returns the configured consent observer.
// If SetObserver was called, returns that observer.
// Otherwise, creates a logging observer from config.
func (p *Provider) Observer() (service.ConsentObserver, error) {
	if p.observer != nil {
		return p.observer, nil
	}

	logger, err := p.Logger()
	if err != nil {
		return nil, err
	}

	p.observer = probe.NewLoggingObserver(logger)
	return p.observer, nil
}

// OAuth2Gateway returns the gateway to the authorization server
func (p *Provider) OAuth2Gateway() (oauth2.Gateway, error) {
	if p.oauth2Gateway != nil {
		return p.oauth2Gateway, nil
	}

	gateway, err := oauth2.NewHydraGateway(oauth2.HydraGatewayConfig{
		AdminURL: p.config.Hydra.AdminURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create hydra gateway: %w", err)
	}

	p.oauth2Gateway = gateway
	return gateway, nil
}

// IdentityGateway returns the gateway to the identity server
func (p *Provider) IdentityGateway() (identity.Gateway, error) {
	if p.identityGateway != nil {
		return p.identityGateway, nil
	}

	gateway, err := identity.NewKratosGateway(identity.KratosGatewayConfig{
		AdminURL: p.config.Kratos.AdminURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kratos gateway: %w", err)
	}

	p.identityGateway = gateway
	return gateway, nil
}

// SchemaCache returns the cache of walked identity schemas
func (p *Provider) SchemaCache() (*cache.SchemaCache, error) {
	if p.schemaCache != nil {
		return p.schemaCache, nil
	}

	identityGateway, err := p.IdentityGateway()
	if err != nil {
		return nil, err
	}

	parser, err := schema.NewParser(p.config.Mapping.Keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to create scope config parser: %w", err)
	}

	walker := schema.NewWalker(p.config.Mapping.Keyword, p.config.Mapping.DirectMapping)
	loader := service.NewSchemaLoader(identityGateway, walker, parser)

	cacheSize := p.config.Mapping.SchemaCacheSize
	if cacheSize <= 0 {
		cacheSize = 64
	}

	p.schemaCache = cache.New(cacheSize, loader)
	return p.schemaCache, nil
}

// ClaimsFilter returns the configured claims filter
func (p *Provider) ClaimsFilter() (claims.Filter, error) {
	if p.claimsFilter != nil {
		return p.claimsFilter, nil
	}

	filter, err := NewClaimsFilter(p.config.Mapping.ClaimsFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to create claims filter: %w", err)
	}

	p.claimsFilter = filter
	return filter, nil
}

// ConsentService returns the configured consent service
func (p *Provider) ConsentService() (*service.ConsentService, error) {
	if p.consentService != nil {
		return p.consentService, nil
	}

	oauth2Gateway, err := p.OAuth2Gateway()
	if err != nil {
		return nil, err
	}

	identityGateway, err := p.IdentityGateway()
	if err != nil {
		return nil, err
	}

	schemaCache, err := p.SchemaCache()
	if err != nil {
		return nil, err
	}

	claimsFilter, err := p.ClaimsFilter()
	if err != nil {
		return nil, err
	}

	observer, err := p.Observer()
	if err != nil {
		return nil, err
	}

	p.consentService = service.NewConsentService(
		oauth2Gateway,
		identityGateway,
		schemaCache,
		claimsFilter,
		observer,
	)
	return p.consentService, nil
}

// ServerConfig returns the server configuration with its handlers wired
func (p *Provider) ServerConfig() (server.Config, error) {
	consentService, err := p.ConsentService()
	if err != nil {
		return server.Config{}, err
	}

	logger, err := p.Logger()
	if err != nil {
		return server.Config{}, err
	}

	return server.Config{
		HTTPPort:       p.config.Server.HTTPPort,
		ConsentHandler: server.NewConsentHandler(consentService, logger),
	}, nil
}

// NewClaimsFilter creates a claims filter from configuration
func NewClaimsFilter(cfg ClaimsFilterConfig) (claims.Filter, error) {
	switch cfg.Type {
	case "", "passthrough":
		return &claims.PassthroughFilter{}, nil
	case "allow_list":
		return claims.NewAllowListFilter(cfg.Claims), nil
	case "deny_list":
		return claims.NewDenyListFilter(cfg.Claims), nil
	default:
		return nil, fmt.Errorf("unsupported claims filter type: %s (supported: passthrough, allow_list, deny_list)", cfg.Type)
	}
}
