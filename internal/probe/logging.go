package probe

import (
	"context"
	"log/slog"

	"github.com/project-kessel/spice/internal/schema"
	"github.com/project-kessel/spice/internal/service"
)

// loggingObserver creates request-scoped logging probes for consent handling
type loggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a consent observer that logs all consent
// lifecycle events using structured logging with slog.
func NewLoggingObserver(logger *slog.Logger) service.ConsentObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingObserver{
		logger: logger,
	}
}

// ConsentStarted implements service.ConsentObserver
func (o *loggingObserver) ConsentStarted(ctx context.Context, challenge string) (context.Context, service.ConsentProbe) {
	// Scoped logger for this probe type
	probeLogger := o.logger.With("event", "consent")

	probeLogger.LogAttrs(ctx, slog.LevelDebug,
		"Starting consent handling",
		slog.String("challenge", challenge),
	)

	return ctx, &loggingConsentProbe{
		ctx:    ctx,
		logger: probeLogger,
	}
}

// loggingConsentProbe is a request-scoped probe that logs events for a
// single consent request
type loggingConsentProbe struct {
	ctx    context.Context
	logger *slog.Logger
}

func (p *loggingConsentProbe) RequestFetched(subject string, requestedScopes []string) {
	p.logger.LogAttrs(p.ctx, slog.LevelDebug,
		"Consent request fetched",
		slog.String("subject", subject),
		slog.Any("requested_scopes", requestedScopes),
	)
}

func (p *loggingConsentProbe) IdentityResolved(identityID, schemaID string) {
	p.logger.LogAttrs(p.ctx, slog.LevelDebug,
		"Identity resolved",
		slog.String("identity_id", identityID),
		slog.String("schema_id", schemaID),
	)
}

func (p *loggingConsentProbe) SchemaWarnings(schemaID string, warnings []schema.Warning) {
	for _, warning := range warnings {
		p.logger.LogAttrs(p.ctx, slog.LevelWarn,
			"Schema mapping entry dropped",
			slog.String("schema_id", schemaID),
			slog.String("warning", warning.String()),
		)
	}
}

func (p *loggingConsentProbe) ScopeResolved(scope string) {
	p.logger.LogAttrs(p.ctx, slog.LevelDebug,
		"Scope resolved",
		slog.String("scope", scope),
	)
}

func (p *loggingConsentProbe) ScopeSkipped(scope string, reason string) {
	p.logger.LogAttrs(p.ctx, slog.LevelDebug,
		"Scope contributed no claims",
		slog.String("scope", scope),
		slog.String("reason", reason),
	)
}

func (p *loggingConsentProbe) ConsentAccepted(grantedScopes []string, redirectTo string) {
	p.logger.LogAttrs(p.ctx, slog.LevelInfo,
		"Consent accepted",
		slog.Any("granted_scopes", grantedScopes),
		slog.String("redirect_to", redirectTo),
	)
}

func (p *loggingConsentProbe) Failed(stage string, err error) {
	p.logger.LogAttrs(p.ctx, slog.LevelError,
		"Consent handling failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

func (p *loggingConsentProbe) End() {
	p.logger.LogAttrs(p.ctx, slog.LevelDebug, "Consent handling completed")
}
