package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubResolver struct {
	redirectTo string
	err        error

	challenges []string
}

func (s *stubResolver) HandleConsent(_ context.Context, challenge string) (string, error) {
	s.challenges = append(s.challenges, challenge)
	if s.err != nil {
		return "", s.err
	}
	return s.redirectTo, nil
}

func TestConsentHandlerRedirects(t *testing.T) {
	resolver := &stubResolver{redirectTo: "https://hydra.example.com/continue"}
	handler := NewConsentHandler(resolver, nil)

	req := httptest.NewRequest(http.MethodGet, "/consent?consent_challenge=abc123", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status %d, got %d", http.StatusFound, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "https://hydra.example.com/continue" {
		t.Errorf("expected redirect to continue URL, got %q", got)
	}
	if len(resolver.challenges) != 1 || resolver.challenges[0] != "abc123" {
		t.Errorf("expected resolver to receive challenge abc123, got %v", resolver.challenges)
	}
}

func TestConsentHandlerMissingChallenge(t *testing.T) {
	resolver := &stubResolver{redirectTo: "https://hydra.example.com/continue"}
	handler := NewConsentHandler(resolver, nil)

	req := httptest.NewRequest(http.MethodGet, "/consent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if len(resolver.challenges) != 0 {
		t.Errorf("resolver should not be called without a challenge, got %v", resolver.challenges)
	}
}

func TestConsentHandlerResolverError(t *testing.T) {
	resolver := &stubResolver{err: errors.New("hydra unreachable")}
	handler := NewConsentHandler(resolver, nil)

	req := httptest.NewRequest(http.MethodGet, "/consent?consent_challenge=abc123", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}
