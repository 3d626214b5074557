package traits

import (
	"encoding/json"
	"testing"
)

func testDoc(t *testing.T) any {
	t.Helper()
	var doc any
	err := json.Unmarshal([]byte(`{
		"traits": {
			"email": "a@b.com",
			"name": {"first": "Ada", "last": "Lovelace"},
			"emails": ["a@b.com", "b@b.com"],
			"odd/key": "slash",
			"odd~key": "tilde"
		}
	}`), &doc)
	if err != nil {
		t.Fatalf("failed to unmarshal test document: %v", err)
	}
	return doc
}

func TestPointer_Resolve(t *testing.T) {
	doc := testDoc(t)

	tests := []struct {
		name    string
		pointer string
		want    any
		wantOK  bool
	}{
		{"top-level trait", "/traits/email", "a@b.com", true},
		{"nested trait", "/traits/name/first", "Ada", true},
		{"array index", "/traits/emails/1", "b@b.com", true},
		{"escaped slash", "/traits/odd~1key", "slash", true},
		{"escaped tilde", "/traits/odd~0key", "tilde", true},
		{"missing trait", "/traits/phone", nil, false},
		{"missing branch", "/metadata/foo", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.pointer).Resolve(doc)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.pointer, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.pointer, got, tt.want)
			}
		})
	}
}

func TestParse_InvalidPointerNeverResolves(t *testing.T) {
	// Pointers must start with "/"; this one is kept but never resolves.
	p := Parse("traits/email")
	if p.Valid() {
		t.Error("expected pointer without leading slash to be invalid")
	}
	if _, ok := p.Resolve(testDoc(t)); ok {
		t.Error("expected invalid pointer to be non-resolving")
	}
}

func TestFromSegments(t *testing.T) {
	doc := testDoc(t)

	p := FromSegments("traits", "email")
	if p.String() != "/traits/email" {
		t.Errorf("FromSegments pointer = %q, want /traits/email", p.String())
	}

	// Segments containing pointer syntax characters are escaped.
	p = FromSegments("traits", "odd/key")
	v, ok := p.Resolve(doc)
	if !ok || v != "slash" {
		t.Errorf("FromSegments slash segment resolved to (%v, %v), want (slash, true)", v, ok)
	}

	p = FromSegments("traits", "odd~key")
	v, ok = p.Resolve(doc)
	if !ok || v != "tilde" {
		t.Errorf("FromSegments tilde segment resolved to (%v, %v), want (tilde, true)", v, ok)
	}
}
