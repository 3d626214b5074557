package service

import (
	"context"
	"fmt"

	"github.com/project-kessel/spice/internal/cache"
	"github.com/project-kessel/spice/internal/claims"
	"github.com/project-kessel/spice/internal/identity"
	"github.com/project-kessel/spice/internal/mapper"
	"github.com/project-kessel/spice/internal/oauth2"
	"github.com/project-kessel/spice/internal/schema"
)

// ConsentService orchestrates consent handling. This is the core
// business logic that brings together the authorization server, the
// identity server, and the schema-driven mapping engine to decide what
// claims the issued tokens carry.
//
// Policy: consent is always skipped and every requested scope is
// granted; the engine only computes the claim payload. A scope whose
// configuration is missing or whose traits are absent simply contributes
// no claims — engine conditions never fail a consent request.
type ConsentService struct {
	authorization oauth2.Gateway
	identities    identity.Gateway
	schemas       *cache.SchemaCache
	claimsFilter  claims.Filter
	observer      ConsentObserver
}

// NewConsentService creates a new consent service
func NewConsentService(
	authorization oauth2.Gateway,
	identities identity.Gateway,
	schemas *cache.SchemaCache,
	claimsFilter claims.Filter,
	observer ConsentObserver,
) *ConsentService {
	// Null object pattern for the optional collaborators
	if claimsFilter == nil {
		claimsFilter = &claims.PassthroughFilter{}
	}
	if observer == nil {
		observer = NoOpConsentObserver{}
	}
	return &ConsentService{
		authorization: authorization,
		identities:    identities,
		schemas:       schemas,
		claimsFilter:  claimsFilter,
		observer:      observer,
	}
}

// HandleConsent resolves one consent challenge end to end and returns
// the URL to redirect the browser to.
func (s *ConsentService) HandleConsent(ctx context.Context, challenge string) (string, error) {
	ctx, probe := s.observer.ConsentStarted(ctx, challenge)
	defer probe.End()

	request, err := s.authorization.GetConsentRequest(ctx, challenge)
	if err != nil {
		probe.Failed("fetch_consent_request", err)
		return "", err
	}
	probe.RequestFetched(request.Subject, request.RequestedScopes)

	if request.Subject == "" {
		err := fmt.Errorf("consent request %s does not carry a subject", challenge)
		probe.Failed("fetch_consent_request", err)
		return "", err
	}

	ident, err := s.identities.GetIdentity(ctx, request.Subject)
	if err != nil {
		probe.Failed("fetch_identity", err)
		return "", err
	}
	probe.IdentityResolved(ident.ID, ident.SchemaID)

	snapshot, err := s.schemas.Get(ctx, ident.SchemaID)
	if err != nil {
		probe.Failed("load_schema", err)
		return "", err
	}
	if len(snapshot.Warnings) > 0 {
		probe.SchemaWarnings(snapshot.SchemaID, snapshot.Warnings)
	}

	idToken, accessToken := s.resolveScopes(ident, snapshot, request.RequestedScopes, probe)

	decision := &oauth2.ConsentDecision{
		GrantScopes:       request.RequestedScopes,
		GrantAudience:     request.RequestedAudience,
		IDTokenClaims:     idToken,
		AccessTokenClaims: accessToken,
	}

	redirectTo, err := s.authorization.AcceptConsentRequest(ctx, challenge, decision)
	if err != nil {
		probe.Failed("accept_consent_request", err)
		return "", err
	}
	probe.ConsentAccepted(decision.GrantScopes, redirectTo)

	return redirectTo, nil
}

// resolveScopes runs the mapping engine for every requested scope and
// assembles the two claim sets. The identity document seen by pointers
// is the trait document wrapped under its traits key, matching the
// pointer namespace the walker and the composite mappings use.
func (s *ConsentService) resolveScopes(
	ident *identity.Identity,
	snapshot *cache.Snapshot,
	requestedScopes []string,
	probe ConsentProbe,
) (claims.Claims, claims.Claims) {
	document := map[string]any{"traits": ident.Traits}

	var fragments []claims.ScopedFragment
	for _, scope := range requestedScopes {
		cfg, ok := snapshot.Scopes.Get(scope)
		if !ok {
			probe.ScopeSkipped(scope, "scope is not configured")
			continue
		}

		pointers, _ := snapshot.Pointers.Get(scope)
		fragment := mapper.Resolve(document, pointers, cfg)
		if fragment.Empty() {
			probe.ScopeSkipped(scope, "no trait resolves for scope")
			continue
		}

		session := cfg.SessionData()
		fragments = append(fragments, claims.ScopedFragment{
			Scope:       scope,
			IDTokenPath: session.IDToken,
			AccessPath:  session.AccessToken,
			Fragment:    fragment,
		})
		probe.ScopeResolved(scope)
	}

	idToken, accessToken := claims.Assemble(fragments)
	return s.claimsFilter.Filter(idToken), s.claimsFilter.Filter(accessToken)
}

// ValidateSchema loads (or reuses) the snapshot for a schema ID and
// returns the warnings recorded while building it. Used by the validate
// command; performs no consent action.
func (s *ConsentService) ValidateSchema(ctx context.Context, schemaID string) ([]schema.Warning, error) {
	snapshot, err := s.schemas.Get(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	return snapshot.Warnings, nil
}
