package traits

import (
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// Pointer is an absolute JSON Pointer (RFC 6901) into an identity document.
// Pointers are immutable once constructed.
//
// A Pointer may be syntactically invalid (e.g. a mapping entry carrying a
// malformed $ref). Invalid pointers are kept around rather than rejected so
// that resolution can treat them as non-resolving instead of failing the
// request that uses them.
type Pointer struct {
	raw   string
	ptr   jsonpointer.Pointer
	valid bool
}

// Parse parses raw as a JSON Pointer. A syntactically invalid pointer is
// returned as a Pointer that never resolves.
func Parse(raw string) Pointer {
	ptr, err := jsonpointer.New(raw)
	if err != nil {
		return Pointer{raw: raw}
	}
	return Pointer{raw: raw, ptr: ptr, valid: true}
}

// FromSegments builds a Pointer from already-decoded path segments,
// escaping them per RFC 6901.
func FromSegments(segments ...string) Pointer {
	var b strings.Builder
	for _, segment := range segments {
		segment = strings.ReplaceAll(segment, "~", "~0")
		segment = strings.ReplaceAll(segment, "/", "~1")
		b.WriteString("/")
		b.WriteString(segment)
	}
	return Parse(b.String())
}

// Valid reports whether the pointer parsed successfully.
func (p Pointer) Valid() bool {
	return p.valid
}

// String returns the raw pointer text.
func (p Pointer) String() string {
	return p.raw
}

// Resolve dereferences the pointer against a decoded JSON document.
// The second return value is false when the pointer is invalid or the
// referenced location does not exist in doc.
func (p Pointer) Resolve(doc any) (any, bool) {
	if !p.valid {
		return nil, false
	}
	value, _, err := p.ptr.Get(doc)
	if err != nil {
		return nil, false
	}
	return value, true
}
