package service

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/project-kessel/spice/internal/cache"
	"github.com/project-kessel/spice/internal/claims"
	"github.com/project-kessel/spice/internal/identity"
	"github.com/project-kessel/spice/internal/oauth2"
	"github.com/project-kessel/spice/internal/schema"
)

const (
	testKeyword   = "x-oauth2"
	testChallenge = "challenge-1234"
	testSubject   = "subject-1234"
	testSchemaID  = "default"
)

type fixture struct {
	authorization *oauth2.StubGateway
	identities    *identity.StubGateway
	service       *ConsentService
}

func newFixture(t *testing.T, schemaJSON string, traitsJSON string, requestedScopes []string) *fixture {
	t.Helper()

	var traitDoc any
	if err := json.Unmarshal([]byte(traitsJSON), &traitDoc); err != nil {
		t.Fatalf("failed to decode traits: %v", err)
	}

	identities := identity.NewStubGateway().
		AddSchema(testSchemaID, []byte(schemaJSON)).
		AddIdentity(&identity.Identity{
			ID:       testSubject,
			SchemaID: testSchemaID,
			Traits:   traitDoc,
		})

	authorization := oauth2.NewStubGateway().
		AddConsentRequest(&oauth2.ConsentRequest{
			Challenge:         testChallenge,
			Subject:           testSubject,
			RequestedScopes:   requestedScopes,
			RequestedAudience: []string{"https://api.example.com"},
		})

	parser, err := schema.NewParser(testKeyword)
	if err != nil {
		t.Fatalf("failed to construct parser: %v", err)
	}
	loader := NewSchemaLoader(identities, schema.NewWalker(testKeyword, false), parser)

	return &fixture{
		authorization: authorization,
		identities:    identities,
		service:       NewConsentService(authorization, identities, cache.New(4, loader), nil, nil),
	}
}

func (f *fixture) handle(t *testing.T) *oauth2.ConsentDecision {
	t.Helper()
	redirectTo, err := f.service.HandleConsent(context.Background(), testChallenge)
	if err != nil {
		t.Fatalf("HandleConsent: %v", err)
	}
	if redirectTo != f.authorization.RedirectTo {
		t.Errorf("redirect = %q, want %q", redirectTo, f.authorization.RedirectTo)
	}
	decision, ok := f.authorization.Accepted[testChallenge]
	if !ok {
		t.Fatal("consent request was not accepted")
	}
	return decision
}

func TestHandleConsent_ValueScopeEndToEnd(t *testing.T) {
	f := newFixture(t, `{
		"properties": {
			"traits": {
				"type": "object",
				"properties": {
					"email": {"type": "string", "x-oauth2": {"scopes": ["email"]}}
				}
			}
		}
	}`, `{"email": "a@b.com"}`, []string{"email"})

	decision := f.handle(t)

	if !reflect.DeepEqual(decision.IDTokenClaims, claims.Claims{"email": "a@b.com"}) {
		t.Errorf("idToken claims = %#v, want email a@b.com", decision.IDTokenClaims)
	}
	if !reflect.DeepEqual(decision.AccessTokenClaims, claims.Claims{"email": "a@b.com"}) {
		t.Errorf("accessToken claims = %#v, want email a@b.com", decision.AccessTokenClaims)
	}
	if !reflect.DeepEqual(decision.GrantScopes, []string{"email"}) {
		t.Errorf("granted scopes = %v, want [email]", decision.GrantScopes)
	}
	if !reflect.DeepEqual(decision.GrantAudience, []string{"https://api.example.com"}) {
		t.Errorf("granted audience = %v, want the requested audience", decision.GrantAudience)
	}
}

func TestHandleConsent_CompositeScopeEndToEnd(t *testing.T) {
	f := newFixture(t, `{
		"x-oauth2": {
			"scopes": {
				"profile": {
					"type": "composite",
					"mapping": {
						"type": "object",
						"properties": {
							"e": {"type": "path", "$ref": "/traits/email"}
						}
					},
					"sessionData": {"idToken": "profile"}
				}
			}
		},
		"properties": {
			"traits": {
				"type": "object",
				"properties": {
					"email": {"type": "string", "x-oauth2": {"scopes": ["email"]}}
				}
			}
		}
	}`, `{"email": "a@b.com"}`, []string{"profile"})

	decision := f.handle(t)

	encoded, err := json.Marshal(decision.IDTokenClaims)
	if err != nil {
		t.Fatalf("failed to encode idToken claims: %v", err)
	}
	if want := `{"profile":{"e":"a@b.com"}}`; string(encoded) != want {
		t.Errorf("idToken claims = %s, want %s", encoded, want)
	}
	if len(decision.AccessTokenClaims) != 0 {
		t.Errorf("accessToken claims = %#v, want none", decision.AccessTokenClaims)
	}
}

func TestHandleConsent_UnknownScopeStillGranted(t *testing.T) {
	// An unconfigured scope contributes no claims but is still granted:
	// the engine computes payloads, it does not gate consent.
	f := newFixture(t, `{
		"properties": {
			"traits": {
				"type": "object",
				"properties": {
					"email": {"type": "string", "x-oauth2": {"scopes": ["email"]}}
				}
			}
		}
	}`, `{"email": "a@b.com"}`, []string{"email", "offline_access"})

	decision := f.handle(t)

	if !reflect.DeepEqual(decision.GrantScopes, []string{"email", "offline_access"}) {
		t.Errorf("granted scopes = %v, want both requested scopes", decision.GrantScopes)
	}
	if _, ok := decision.IDTokenClaims["offline_access"]; ok {
		t.Error("unconfigured scope must not emit claims")
	}
}

func TestHandleConsent_MissingOptionalTrait(t *testing.T) {
	f := newFixture(t, `{
		"properties": {
			"traits": {
				"type": "object",
				"properties": {
					"phone": {"type": "string", "x-oauth2": {"scopes": ["phone"]}}
				}
			}
		}
	}`, `{}`, []string{"phone"})

	decision := f.handle(t)

	if len(decision.IDTokenClaims) != 0 || len(decision.AccessTokenClaims) != 0 {
		t.Errorf("claims = (%#v, %#v), want none for an absent optional trait",
			decision.IDTokenClaims, decision.AccessTokenClaims)
	}
}

func TestHandleConsent_MalformedScopeDoesNotPoisonOthers(t *testing.T) {
	f := newFixture(t, `{
		"x-oauth2": {
			"scopes": {
				"broken": {"type": "value"}
			}
		},
		"properties": {
			"traits": {
				"type": "object",
				"properties": {
					"email": {"type": "string", "x-oauth2": {"scopes": ["email"]}}
				}
			}
		}
	}`, `{"email": "a@b.com"}`, []string{"broken", "email"})

	decision := f.handle(t)

	if decision.IDTokenClaims["email"] != "a@b.com" {
		t.Errorf("idToken claims = %#v, want email despite broken sibling config", decision.IDTokenClaims)
	}
	if _, ok := decision.IDTokenClaims["broken"]; ok {
		t.Error("dropped configuration must not emit claims")
	}
}

func TestHandleConsent_SubjectMissing(t *testing.T) {
	authorization := oauth2.NewStubGateway().AddConsentRequest(&oauth2.ConsentRequest{
		Challenge:       testChallenge,
		RequestedScopes: []string{"email"},
	})

	parser, err := schema.NewParser(testKeyword)
	if err != nil {
		t.Fatalf("failed to construct parser: %v", err)
	}
	loader := NewSchemaLoader(identity.NewStubGateway(), schema.NewWalker(testKeyword, false), parser)
	svc := NewConsentService(authorization, identity.NewStubGateway(), cache.New(4, loader), nil, nil)

	if _, err := svc.HandleConsent(context.Background(), testChallenge); err == nil {
		t.Fatal("expected error for a consent request without a subject")
	}
	if len(authorization.Accepted) != 0 {
		t.Error("consent must not be accepted without a subject")
	}
}

func TestHandleConsent_ClaimsFilterApplied(t *testing.T) {
	f := newFixture(t, `{
		"properties": {
			"traits": {
				"type": "object",
				"properties": {
					"email": {"type": "string", "x-oauth2": {"scopes": ["email"]}},
					"admin": {"type": "boolean", "x-oauth2": {"scopes": ["admin"]}}
				}
			}
		}
	}`, `{"email": "a@b.com", "admin": true}`, []string{"email", "admin"})

	f.service.claimsFilter = claims.NewDenyListFilter([]string{"admin"})

	decision := f.handle(t)

	if _, ok := decision.IDTokenClaims["admin"]; ok {
		t.Error("deny-listed claim leaked into idToken claims")
	}
	if decision.IDTokenClaims["email"] != "a@b.com" {
		t.Errorf("idToken claims = %#v, want email to survive the filter", decision.IDTokenClaims)
	}
}

func TestHandleConsent_SchemaSnapshotReused(t *testing.T) {
	f := newFixture(t, `{
		"properties": {
			"traits": {
				"type": "object",
				"properties": {
					"email": {"type": "string", "x-oauth2": {"scopes": ["email"]}}
				}
			}
		}
	}`, `{"email": "a@b.com"}`, []string{"email"})

	f.handle(t)

	// Second request against the same schema must not refetch it.
	f.identities.AddSchema(testSchemaID, []byte(`not even json`))
	f.authorization.AddConsentRequest(&oauth2.ConsentRequest{
		Challenge:       "challenge-5678",
		Subject:         testSubject,
		RequestedScopes: []string{"email"},
	})

	if _, err := f.service.HandleConsent(context.Background(), "challenge-5678"); err != nil {
		t.Fatalf("HandleConsent with cached schema: %v", err)
	}
	decision := f.authorization.Accepted["challenge-5678"]
	if decision == nil || decision.IDTokenClaims["email"] != "a@b.com" {
		t.Errorf("cached-schema decision = %+v, want email claim", decision)
	}
}

func TestValidateSchema(t *testing.T) {
	f := newFixture(t, `{
		"x-oauth2": {
			"scopes": {
				"broken": {"type": "value"}
			}
		},
		"properties": {
			"traits": {
				"type": "object",
				"properties": {
					"email": {"type": "string", "x-oauth2": {"scopes": ["email"]}}
				}
			}
		}
	}`, `{}`, nil)

	warnings, err := f.service.ValidateSchema(context.Background(), testSchemaID)
	if err != nil {
		t.Fatalf("ValidateSchema: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Scope != "broken" {
		t.Errorf("warnings = %v, want one for scope broken", warnings)
	}
}
