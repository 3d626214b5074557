package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// ConsentResolver handles a consent challenge and returns the redirect URL
// the browser should be sent to.
type ConsentResolver interface {
	HandleConsent(ctx context.Context, challenge string) (string, error)
}

// ConsentHandler serves the consent endpoint the authorization server
// redirects browsers to. It delegates the consent decision to the resolver
// and answers with a redirect back into the login flow.
type ConsentHandler struct {
	resolver ConsentResolver
	logger   *slog.Logger
}

// NewConsentHandler creates a consent handler backed by the given resolver.
func NewConsentHandler(resolver ConsentResolver, logger *slog.Logger) *ConsentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsentHandler{
		resolver: resolver,
		logger:   logger,
	}
}

func (h *ConsentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := h.logger.With("request_id", requestID)

	challenge := r.URL.Query().Get("consent_challenge")
	if challenge == "" {
		logger.LogAttrs(r.Context(), slog.LevelWarn, "Consent request without challenge")
		http.Error(w, "missing consent_challenge parameter", http.StatusBadRequest)
		return
	}

	redirectTo, err := h.resolver.HandleConsent(r.Context(), challenge)
	if err != nil {
		logger.LogAttrs(r.Context(), slog.LevelError,
			"Consent handling failed",
			slog.String("error", err.Error()),
		)
		http.Error(w, "consent handling failed", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, redirectTo, http.StatusFound)
}
