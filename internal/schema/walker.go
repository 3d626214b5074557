package schema

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/project-kessel/spice/internal/traits"
)

// The walker only understands directly-embedded, unconditional object
// structure. These capability flags are part of the package contract:
// reference-following and conditional evaluation would be additive
// features, not bug fixes.
const (
	// FollowsReferences is false: $ref nodes are opaque. An annotation on
	// the referencing property itself is still honored, but the walker
	// never descends across the reference.
	FollowsReferences = false

	// FollowsConditionals is false: if/then/else and the allOf/anyOf/oneOf
	// composition keywords are never descended into.
	FollowsConditionals = false
)

// ScopePointers maps scope names to the ordered trait pointers annotated
// for them. Iteration order is schema declaration order, which is
// significant for the first/last collect policies.
type ScopePointers struct {
	order    []string
	pointers map[string][]traits.Pointer
}

// NewScopePointers returns an empty pointer table.
func NewScopePointers() *ScopePointers {
	return &ScopePointers{pointers: make(map[string][]traits.Pointer)}
}

func (s *ScopePointers) add(scope string, pointer traits.Pointer) {
	if _, ok := s.pointers[scope]; !ok {
		s.order = append(s.order, scope)
	}
	s.pointers[scope] = append(s.pointers[scope], pointer)
}

// Get returns the pointers recorded for a scope in declaration order.
func (s *ScopePointers) Get(scope string) ([]traits.Pointer, bool) {
	pointers, ok := s.pointers[scope]
	return pointers, ok
}

// Scopes returns the discovered scope names in discovery order.
func (s *ScopePointers) Scopes() []string {
	return s.order
}

// Len returns the number of discovered scopes.
func (s *ScopePointers) Len() int {
	return len(s.order)
}

// Walker discovers which trait properties feed which OAuth scopes by
// descending an identity schema's traits subtree.
type Walker struct {
	keyword       string
	directMapping bool
}

// NewWalker creates a walker that reads scope annotations from the given
// extension keyword. With directMapping enabled, unannotated direct
// children of traits synthesize an implicit scope named after the
// property.
func NewWalker(keyword string, directMapping bool) *Walker {
	return &Walker{
		keyword:       keyword,
		directMapping: directMapping,
	}
}

// Walk traverses the schema's traits object and returns the per-scope
// pointer table plus any warnings for malformed annotations. The schema
// is taken as raw JSON text so that property declaration order survives.
func (w *Walker) Walk(schemaJSON []byte) (*ScopePointers, []Warning) {
	pointers := NewScopePointers()
	var warnings []Warning

	root := gjson.ParseBytes(schemaJSON)
	traitsNode := root.Get("properties").Get("traits")
	if !traitsNode.Exists() {
		warnings = append(warnings, Warning{
			Reason: "schema has no properties.traits object",
		})
		return pointers, warnings
	}

	w.walkObject(traitsNode, []string{"traits"}, 1, pointers, &warnings)
	return pointers, warnings
}

// walkObject visits the declared properties of an embedded object schema.
// depth is 1 for direct children of traits.
func (w *Walker) walkObject(node gjson.Result, path []string, depth int, pointers *ScopePointers, warnings *[]Warning) {
	node.Get("properties").ForEach(func(key, property gjson.Result) bool {
		name := key.String()

		propertyPath := make([]string, 0, len(path)+1)
		propertyPath = append(propertyPath, path...)
		propertyPath = append(propertyPath, name)
		pointer := traits.FromSegments(propertyPath...)

		// A property carrying a malformed annotation warns and contributes
		// nothing; it does not fall back to an implicit scope.
		if annotation := member(property, w.keyword); annotation.Exists() {
			scopes, err := parseAnnotation(annotation)
			if err != nil {
				*warnings = append(*warnings, Warning{
					Pointer: pointer.String(),
					Reason:  err.Error(),
				})
			} else {
				for _, scope := range scopes {
					pointers.add(scope, pointer)
				}
			}
		} else if w.directMapping && depth == 1 {
			pointers.add(name, pointer)
		}

		// $ref boundaries are opaque; see FollowsReferences.
		if member(property, "$ref").Exists() {
			return true
		}

		if property.Get("properties").IsObject() {
			w.walkObject(property, propertyPath, depth+1, pointers, warnings)
		}

		return true
	})
}

// parseAnnotation validates a scope annotation of the form
// {"scopes": ["a", "b"]} and returns the scope names in order.
func parseAnnotation(annotation gjson.Result) ([]string, error) {
	if !annotation.IsObject() {
		return nil, fmt.Errorf("scope annotation must be an object, got %s", annotation.Type)
	}

	scopesNode := annotation.Get("scopes")
	if !scopesNode.IsArray() {
		return nil, fmt.Errorf("scope annotation requires a scopes array")
	}

	var scopes []string
	var parseErr error
	scopesNode.ForEach(func(_, entry gjson.Result) bool {
		if entry.Type != gjson.String || entry.String() == "" {
			parseErr = fmt.Errorf("scope names must be non-empty strings")
			return false
		}
		scopes = append(scopes, entry.String())
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("scope annotation has an empty scopes array")
	}

	return scopes, nil
}

// member looks up an object member by exact name. gjson path syntax gives
// dots and wildcards meaning, so extension keywords (which may contain
// either) cannot be looked up with Result.Get directly.
func member(node gjson.Result, name string) gjson.Result {
	var found gjson.Result
	node.ForEach(func(key, value gjson.Result) bool {
		if key.String() == name {
			found = value
			return false
		}
		return true
	})
	return found
}
