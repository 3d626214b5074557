package claims

// Filter decides which assembled claims are passed through to the
// consent response.
type Filter interface {
	// Filter returns only the claims that should be passed through
	Filter(c Claims) Claims
}

// AllowListFilter only passes claims whose top-level name is in the allow list
type AllowListFilter struct {
	allowed map[string]bool
}

// NewAllowListFilter creates a new allow list filter
func NewAllowListFilter(allowedClaims []string) *AllowListFilter {
	allowed := make(map[string]bool, len(allowedClaims))
	for _, claim := range allowedClaims {
		allowed[claim] = true
	}
	return &AllowListFilter{
		allowed: allowed,
	}
}

// Filter implements Filter
func (f *AllowListFilter) Filter(c Claims) Claims {
	if c == nil {
		return nil
	}
	filtered := make(Claims)
	for key, value := range c {
		if f.allowed[key] {
			filtered[key] = value
		}
	}
	return filtered
}

// DenyListFilter blocks claims whose top-level name is in the deny list.
// Useful for keeping schema-mapped traits from clobbering registered
// claims such as sub or iss.
type DenyListFilter struct {
	denied map[string]bool
}

// NewDenyListFilter creates a new deny list filter
func NewDenyListFilter(deniedClaims []string) *DenyListFilter {
	denied := make(map[string]bool, len(deniedClaims))
	for _, claim := range deniedClaims {
		denied[claim] = true
	}
	return &DenyListFilter{
		denied: denied,
	}
}

// Filter implements Filter
func (f *DenyListFilter) Filter(c Claims) Claims {
	if c == nil {
		return nil
	}
	filtered := make(Claims)
	for key, value := range c {
		if !f.denied[key] {
			filtered[key] = value
		}
	}
	return filtered
}

// PassthroughFilter passes all claims through unchanged
type PassthroughFilter struct{}

// Filter implements Filter
func (f *PassthroughFilter) Filter(c Claims) Claims {
	return c.Copy()
}
