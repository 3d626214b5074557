package claims

import "strings"

// Claims is a set of token claims keyed by claim name.
// Values are decoded JSON values (string, float64, bool, nil,
// []any, map[string]any).
type Claims map[string]any

// Copy returns a shallow copy of the claims
func (c Claims) Copy() Claims {
	if c == nil {
		return nil
	}
	copied := make(Claims, len(c))
	for key, value := range c {
		copied[key] = value
	}
	return copied
}

// Set writes value at a dotted destination path, creating intermediate
// objects as needed. An existing non-object intermediate is replaced:
// later writes win over earlier ones, which is the documented conflict
// policy for scopes configured against the same destination.
func (c Claims) Set(path string, value any) {
	segments := strings.Split(path, ".")

	current := map[string]any(c)
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// Value is a resolved JSON value destined for a claim set. The wrapper
// distinguishes "resolved to JSON null" from "absent".
type Value struct {
	Data any
}

// Fragment is the contribution of a single scope: an optional value for
// the ID token claim set and an optional value for the access token
// claim set. A nil field means the scope contributes nothing there.
type Fragment struct {
	IDToken     *Value
	AccessToken *Value
}

// Empty reports whether the fragment contributes no claims at all.
func (f Fragment) Empty() bool {
	return f.IDToken == nil && f.AccessToken == nil
}

// ScopedFragment pairs a fragment with the scope that produced it and the
// destination paths it should be written to.
type ScopedFragment struct {
	Scope       string
	IDTokenPath string
	AccessPath  string
	Fragment    Fragment
}

// Assemble merges per-scope fragments into the two top-level claim sets.
// Fragments are applied in input order; when two scopes target the same
// destination path the later one overwrites the earlier one.
func Assemble(fragments []ScopedFragment) (idToken Claims, accessToken Claims) {
	idToken = make(Claims)
	accessToken = make(Claims)

	for _, sf := range fragments {
		if sf.Fragment.IDToken != nil && sf.IDTokenPath != "" {
			idToken.Set(sf.IDTokenPath, sf.Fragment.IDToken.Data)
		}
		if sf.Fragment.AccessToken != nil && sf.AccessPath != "" {
			accessToken.Set(sf.AccessPath, sf.Fragment.AccessToken.Data)
		}
	}

	return idToken, accessToken
}
