package schema

import "fmt"

// Warning reports a non-fatal problem found while walking a schema or
// parsing its scope configuration. The offending entry is dropped;
// nothing in this package aborts on a warning.
type Warning struct {
	// Scope is the scope the warning relates to, when known
	Scope string

	// Pointer is the schema property the warning relates to, when known
	Pointer string

	// Reason describes the violated constraint
	Reason string
}

func (w Warning) String() string {
	switch {
	case w.Scope != "" && w.Pointer != "":
		return fmt.Sprintf("scope %q at %s: %s", w.Scope, w.Pointer, w.Reason)
	case w.Scope != "":
		return fmt.Sprintf("scope %q: %s", w.Scope, w.Reason)
	case w.Pointer != "":
		return fmt.Sprintf("property %s: %s", w.Pointer, w.Reason)
	default:
		return w.Reason
	}
}
