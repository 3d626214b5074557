package service

import (
	"context"

	"github.com/project-kessel/spice/internal/schema"
)

// ConsentObserver creates request-scoped observability probes for consent
// handling. The observer captures execution context when a consent
// request starts and returns a probe scoped to that request, so
// individual probe methods don't need a context argument.
type ConsentObserver interface {
	// ConsentStarted creates a new request-scoped probe for one consent
	// challenge. Returns an instrumented context and the probe.
	ConsentStarted(ctx context.Context, challenge string) (context.Context, ConsentProbe)
}

// ConsentProbe provides request-scoped observability for a single consent
// request. Created by ConsentObserver.ConsentStarted, terminated with
// End (typically deferred).
type ConsentProbe interface {
	// RequestFetched is called once the consent request is retrieved
	// from the authorization server.
	RequestFetched(subject string, requestedScopes []string)

	// IdentityResolved is called once the identity's trait document is
	// retrieved from the identity server.
	IdentityResolved(identityID, schemaID string)

	// SchemaWarnings reports the warnings recorded while the schema
	// snapshot was built. Called at most once per request, and only when
	// warnings exist.
	SchemaWarnings(schemaID string, warnings []schema.Warning)

	// ScopeResolved is called for each requested scope that contributes
	// a claim fragment.
	ScopeResolved(scope string)

	// ScopeSkipped is called for each requested scope that contributes
	// nothing, with the reason (unconfigured, or no resolving traits).
	ScopeSkipped(scope string, reason string)

	// ConsentAccepted is called when the authorization server accepts
	// the consent decision.
	ConsentAccepted(grantedScopes []string, redirectTo string)

	// Failed is called when a gateway step fails; stage names the step.
	Failed(stage string, err error)

	// End terminates the observation. Should be deferred.
	End()
}

// NoOpConsentObserver is a no-op implementation of ConsentObserver.
// Embed it to implement only the events you care about.
type NoOpConsentObserver struct{}

// ConsentStarted implements ConsentObserver
func (NoOpConsentObserver) ConsentStarted(ctx context.Context, challenge string) (context.Context, ConsentProbe) {
	return ctx, NoOpConsentProbe{}
}

// NoOpConsentProbe is a no-op implementation of ConsentProbe
type NoOpConsentProbe struct{}

func (NoOpConsentProbe) RequestFetched(subject string, requestedScopes []string)        {}
func (NoOpConsentProbe) IdentityResolved(identityID, schemaID string)                   {}
func (NoOpConsentProbe) SchemaWarnings(schemaID string, warnings []schema.Warning)      {}
func (NoOpConsentProbe) ScopeResolved(scope string)                                     {}
func (NoOpConsentProbe) ScopeSkipped(scope string, reason string)                       {}
func (NoOpConsentProbe) ConsentAccepted(grantedScopes []string, redirectTo string)      {}
func (NoOpConsentProbe) Failed(stage string, err error)                                 {}
func (NoOpConsentProbe) End()                                                           {}
