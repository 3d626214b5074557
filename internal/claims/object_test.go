package claims

import (
	"encoding/json"
	"testing"
)

func TestOrderedObject_MarshalKeepsInsertionOrder(t *testing.T) {
	obj := &OrderedObject{}
	obj.Set("zeta", 1)
	obj.Set("alpha", nil)
	obj.Set("mid", "x")

	encoded, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"zeta":1,"alpha":null,"mid":"x"}`; string(encoded) != want {
		t.Errorf("marshaled = %s, want %s", encoded, want)
	}
}

func TestOrderedObject_SetReplacesInPlace(t *testing.T) {
	obj := &OrderedObject{}
	obj.Set("a", 1)
	obj.Set("b", 2)
	obj.Set("a", 3)

	if obj.Len() != 2 {
		t.Fatalf("len = %d, want 2", obj.Len())
	}
	if value, ok := obj.Get("a"); !ok || value != 3 {
		t.Errorf("Get(a) = (%v, %v), want (3, true)", value, ok)
	}

	encoded, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"a":3,"b":2}`; string(encoded) != want {
		t.Errorf("marshaled = %s, want %s", encoded, want)
	}
}

func TestOrderedObject_NestsInsideClaims(t *testing.T) {
	inner := &OrderedObject{}
	inner.Set("z", "last-declared-first")
	inner.Set("a", "first-declared-last")

	encoded, err := json.Marshal(Claims{"profile": inner})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"profile":{"z":"last-declared-first","a":"first-declared-last"}}`; string(encoded) != want {
		t.Errorf("marshaled = %s, want %s", encoded, want)
	}
}
