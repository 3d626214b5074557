package mapper

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/project-kessel/spice/internal/claims"
	"github.com/project-kessel/spice/internal/schema"
	"github.com/project-kessel/spice/internal/traits"
)

func identityDoc(t *testing.T, traitsJSON string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(`{"traits": `+traitsJSON+`}`), &doc); err != nil {
		t.Fatalf("failed to build identity document: %v", err)
	}
	return doc
}

// compositeJSON serializes a composite value the way the accept request
// will, so assertions see member order.
func compositeJSON(t *testing.T, value any) string {
	t.Helper()
	encoded, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("failed to encode composite value: %v", err)
	}
	return string(encoded)
}

func ptrs(raw ...string) []traits.Pointer {
	out := make([]traits.Pointer, len(raw))
	for i, r := range raw {
		out[i] = traits.Parse(r)
	}
	return out
}

func bothTokens(scope string) schema.SessionData {
	return schema.SessionData{IDToken: scope, AccessToken: scope}
}

func TestResolve_ValueCollectPolicies(t *testing.T) {
	doc := identityDoc(t, `{"email": "a@b.com", "backup": "b@b.com", "third": "c@b.com"}`)
	pointers := ptrs("/traits/email", "/traits/missing", "/traits/backup", "/traits/third")

	tests := []struct {
		policy schema.CollectPolicy
		want   any
	}{
		{schema.CollectFirst, "a@b.com"},
		{schema.CollectAny, "a@b.com"}, // any is an alias for first
		{schema.CollectLast, "c@b.com"},
		{schema.CollectAll, []any{"a@b.com", "b@b.com", "c@b.com"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			fragment := Resolve(doc, pointers, &schema.ValueScope{
				Collect: tt.policy,
				Session: bothTokens("email"),
			})

			if fragment.IDToken == nil || fragment.AccessToken == nil {
				t.Fatal("expected values at both destinations")
			}
			if !reflect.DeepEqual(fragment.IDToken.Data, tt.want) {
				t.Errorf("idToken value = %v, want %v", fragment.IDToken.Data, tt.want)
			}
			if !reflect.DeepEqual(fragment.AccessToken.Data, tt.want) {
				t.Errorf("accessToken value = %v, want %v", fragment.AccessToken.Data, tt.want)
			}
		})
	}
}

func TestResolve_ValueCollectAllLength(t *testing.T) {
	// The result array length equals the number of resolving pointers.
	doc := identityDoc(t, `{"a": 1, "c": 3}`)
	fragment := Resolve(doc, ptrs("/traits/a", "/traits/b", "/traits/c"), &schema.ValueScope{
		Collect: schema.CollectAll,
		Session: schema.SessionData{IDToken: "nums"},
	})

	values, ok := fragment.IDToken.Data.([]any)
	if !ok {
		t.Fatalf("idToken value is %T, want array", fragment.IDToken.Data)
	}
	if len(values) != 2 {
		t.Errorf("array length = %d, want 2", len(values))
	}
}

func TestResolve_ValueNoPointerResolves(t *testing.T) {
	doc := identityDoc(t, `{}`)

	for _, policy := range []schema.CollectPolicy{
		schema.CollectFirst, schema.CollectLast, schema.CollectAny, schema.CollectAll,
	} {
		fragment := Resolve(doc, ptrs("/traits/phone"), &schema.ValueScope{
			Collect: policy,
			Session: bothTokens("phone"),
		})
		if !fragment.Empty() {
			t.Errorf("policy %s: fragment = %+v, want absent when nothing resolves", policy, fragment)
		}
	}
}

func TestResolve_ValueDestinations(t *testing.T) {
	doc := identityDoc(t, `{"email": "a@b.com"}`)
	pointers := ptrs("/traits/email")

	t.Run("idToken only", func(t *testing.T) {
		fragment := Resolve(doc, pointers, &schema.ValueScope{
			Collect: schema.CollectFirst,
			Session: schema.SessionData{IDToken: "email"},
		})
		if fragment.IDToken == nil || fragment.AccessToken != nil {
			t.Errorf("fragment = %+v, want idToken only", fragment)
		}
	})

	t.Run("accessToken only", func(t *testing.T) {
		fragment := Resolve(doc, pointers, &schema.ValueScope{
			Collect: schema.CollectFirst,
			Session: schema.SessionData{AccessToken: "email"},
		})
		if fragment.IDToken != nil || fragment.AccessToken == nil {
			t.Errorf("fragment = %+v, want accessToken only", fragment)
		}
	})
}

func TestResolve_CompositeRoundTrip(t *testing.T) {
	// A mapping mirroring the trait shape one-to-one reproduces the
	// sub-document exactly, modulo renamed keys.
	doc := identityDoc(t, `{"name": {"first": "Ada", "last": "Lovelace"}, "emails": ["a@b.com", "b@b.com"]}`)

	mapping := schema.ObjectNode{Fields: []schema.ObjectField{
		{Name: "name", Node: schema.ObjectNode{Fields: []schema.ObjectField{
			{Name: "first", Node: schema.PathNode{Pointer: traits.Parse("/traits/name/first")}},
			{Name: "last", Node: schema.PathNode{Pointer: traits.Parse("/traits/name/last")}},
		}}},
		{Name: "emails", Node: schema.TupleNode{Items: []schema.MappingNode{
			schema.PathNode{Pointer: traits.Parse("/traits/emails/0")},
			schema.PathNode{Pointer: traits.Parse("/traits/emails/1")},
		}}},
	}}

	fragment := Resolve(doc, nil, &schema.CompositeScope{
		Mapping: mapping,
		Session: schema.SessionData{IDToken: "profile"},
	})

	want := `{"name":{"first":"Ada","last":"Lovelace"},"emails":["a@b.com","b@b.com"]}`
	if got := compositeJSON(t, fragment.IDToken.Data); got != want {
		t.Errorf("composite value = %s, want %s", got, want)
	}
}

func TestResolve_CompositeObjectKeepsDeclaredOrder(t *testing.T) {
	doc := identityDoc(t, `{"email": "a@b.com", "name": "Ada"}`)

	// Declared order deliberately disagrees with lexical order.
	mapping := schema.ObjectNode{Fields: []schema.ObjectField{
		{Name: "zoned_name", Node: schema.PathNode{Pointer: traits.Parse("/traits/name")}},
		{Name: "address", Node: schema.PathNode{Pointer: traits.Parse("/traits/email")}},
	}}

	fragment := Resolve(doc, nil, &schema.CompositeScope{
		Mapping: mapping,
		Session: schema.SessionData{IDToken: "profile"},
	})

	want := `{"zoned_name":"Ada","address":"a@b.com"}`
	if got := compositeJSON(t, fragment.IDToken.Data); got != want {
		t.Errorf("composite value = %s, want member order preserved: %s", got, want)
	}
}

func TestResolve_CompositeUnresolvedLeafIsNull(t *testing.T) {
	doc := identityDoc(t, `{"email": "a@b.com"}`)

	mapping := schema.ObjectNode{Fields: []schema.ObjectField{
		{Name: "e", Node: schema.PathNode{Pointer: traits.Parse("/traits/email")}},
		{Name: "phone", Node: schema.PathNode{Pointer: traits.Parse("/traits/phone")}},
		{Name: "bad", Node: schema.PathNode{Pointer: traits.Parse("malformed pointer")}},
	}}

	fragment := Resolve(doc, nil, &schema.CompositeScope{
		Mapping: mapping,
		Session: schema.SessionData{IDToken: "profile"},
	})

	want := `{"e":"a@b.com","phone":null,"bad":null}`
	if got := compositeJSON(t, fragment.IDToken.Data); got != want {
		t.Errorf("composite value = %s, want %s", got, want)
	}
}

func TestResolve_CompositeAlwaysPresent(t *testing.T) {
	// Unlike value scopes, a composite emits its structure even when no
	// leaf resolves.
	doc := identityDoc(t, `{}`)

	fragment := Resolve(doc, nil, &schema.CompositeScope{
		Mapping: schema.TupleNode{Items: []schema.MappingNode{
			schema.PathNode{Pointer: traits.Parse("/traits/missing")},
		}},
		Session: schema.SessionData{AccessToken: "profile"},
	})

	if fragment.AccessToken == nil {
		t.Fatal("composite fragment must be present")
	}
	if !reflect.DeepEqual(fragment.AccessToken.Data, []any{nil}) {
		t.Errorf("composite value = %#v, want [null]", fragment.AccessToken.Data)
	}
}

func TestResolve_FragmentFeedsAssembler(t *testing.T) {
	// The end-to-end shape from resolution through assembly.
	doc := identityDoc(t, `{"email": "a@b.com"}`)

	cfg := &schema.ValueScope{Collect: schema.CollectFirst, Session: bothTokens("email")}
	fragment := Resolve(doc, ptrs("/traits/email"), cfg)

	idToken, accessToken := claims.Assemble([]claims.ScopedFragment{{
		Scope:       "email",
		IDTokenPath: cfg.Session.IDToken,
		AccessPath:  cfg.Session.AccessToken,
		Fragment:    fragment,
	}})

	if idToken["email"] != "a@b.com" || accessToken["email"] != "a@b.com" {
		t.Errorf("claims = (%v, %v), want email in both", idToken, accessToken)
	}
}
