// Package mapper resolves an identity's trait values into per-scope
// claim fragments, applying the collection and composition rules declared
// in the identity schema.
//
// Resolution is pure: it reads the identity document and the
// schema-derived tables, and returns a fragment. Nothing here can fail a
// consent request; the worst case for a scope is an absent fragment.
package mapper

import (
	"github.com/project-kessel/spice/internal/claims"
	"github.com/project-kessel/spice/internal/schema"
	"github.com/project-kessel/spice/internal/traits"
)

// Resolve computes the claim fragment one scope contributes for one
// identity document. pointers are the walker's entries for the scope, in
// declaration order; cfg is the scope's configuration. An unconfigured
// scope should be skipped by the caller rather than resolved with a nil
// cfg.
func Resolve(document any, pointers []traits.Pointer, cfg schema.ScopeConfig) claims.Fragment {
	switch c := cfg.(type) {
	case *schema.ValueScope:
		value, ok := collect(document, pointers, c.Collect)
		if !ok {
			return claims.Fragment{}
		}
		return fragmentFor(c.Session, value)
	case *schema.CompositeScope:
		return fragmentFor(c.Session, evaluate(c.Mapping, document))
	default:
		return claims.Fragment{}
	}
}

// collect dereferences each pointer in order, skipping the ones that do
// not resolve, and reduces the survivors under the collect policy. The
// second return value is false when no pointer resolves: the scope is
// then absent rather than null.
func collect(document any, pointers []traits.Pointer, policy schema.CollectPolicy) (any, bool) {
	var values []any
	for _, pointer := range pointers {
		if value, ok := pointer.Resolve(document); ok {
			values = append(values, value)
		}
	}

	if len(values) == 0 {
		return nil, false
	}

	switch policy {
	case schema.CollectLast:
		return values[len(values)-1], true
	case schema.CollectAll:
		return values, true
	case schema.CollectFirst, schema.CollectAny:
		return values[0], true
	default:
		// Unknown policies cannot reach here through the parser; treat
		// like first to keep resolution total.
		return values[0], true
	}
}

// evaluate walks a composite mapping tree against the identity document.
// Unresolvable path leaves contribute JSON null so partially-populated
// structures are still emitted.
func evaluate(node schema.MappingNode, document any) any {
	switch n := node.(type) {
	case schema.PathNode:
		value, ok := n.Pointer.Resolve(document)
		if !ok {
			return nil
		}
		return value
	case schema.ObjectNode:
		// Members keep their declared order through serialization.
		object := &claims.OrderedObject{}
		for _, field := range n.Fields {
			object.Set(field.Name, evaluate(field.Node, document))
		}
		return object
	case schema.TupleNode:
		array := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			array = append(array, evaluate(item, document))
		}
		return array
	default:
		return nil
	}
}

// fragmentFor places a resolved value at the configured destinations.
// Both destinations may receive the same value, one, or neither.
func fragmentFor(session schema.SessionData, value any) claims.Fragment {
	var fragment claims.Fragment
	if session.IDToken != "" {
		fragment.IDToken = &claims.Value{Data: value}
	}
	if session.AccessToken != "" {
		fragment.AccessToken = &claims.Value{Data: value}
	}
	return fragment
}
