package scope

import (
	"fmt"
	"strings"
)

// UnresolvedReferenceError reports a reference that could not be resolved
// against the scope. It fails the owning node; it is never silently treated
// as an empty value.
type UnresolvedReferenceError struct {
	Reference string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference %q", e.Reference)
}

// Resolve resolves a reference against the scope. References take the form
// "nodeId.field" for node-output bindings or a bare name for batch-row
// input (and defaults). Dotted references may continue into nested maps,
// e.g. "extract.value.user.name".
//
// A reference to a node output that has not been written yet resolves to an
// UnresolvedReferenceError. The planner already orders nodes after their
// predecessors, so this is a call-time re-check against malformed graphs,
// not a normal code path.
func Resolve(ref string, s *Scope) (any, error) {
	if v, ok := ResolveLenient(ref, s); ok {
		return v, nil
	}
	return nil, &UnresolvedReferenceError{Reference: ref}
}

// ResolveLenient is Resolve without the error: it reports resolution
// success instead, for callers like the "exists" condition operator.
func ResolveLenient(ref string, s *Scope) (any, bool) {
	if ref == "" {
		return nil, false
	}

	// Exact binding key first: node outputs are stored as "nodeId.field".
	if v, ok := s.bindings[ref]; ok {
		return v, true
	}

	parts := strings.Split(ref, ".")
	if len(parts) == 1 {
		return s.Lookup(ref)
	}

	// Longest bound prefix, then walk the remaining path through maps.
	for cut := len(parts) - 1; cut >= 1; cut-- {
		prefix := strings.Join(parts[:cut], ".")
		base, ok := s.Lookup(prefix)
		if !ok {
			continue
		}
		if v, ok := walkPath(base, parts[cut:]); ok {
			return v, true
		}
		return nil, false
	}

	return nil, false
}

func walkPath(value any, path []string) (any, bool) {
	current := value
	for _, part := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
