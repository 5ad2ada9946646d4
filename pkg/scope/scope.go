// Package scope provides the layered variable scope a flow run reads and
// writes, together with reference resolution against it.
//
// A scope has three layers, consulted in order: node-output bindings
// (written once per node on successful completion, keyed "nodeId.field"),
// the batch-row input (read-only for the run), and node-local defaults.
// Bindings are single-assignment: a name is never rebound within one run.
// Re-executing a flow for a new row always starts from a fresh scope.
package scope

import (
	"errors"
	"fmt"
)

// ErrAlreadyBound is returned by Bind when a name was already written in
// the same run.
var ErrAlreadyBound = errors.New("variable already bound in this run")

// Scope is the layered variable store for one flow run. It is owned by a
// single run and is not safe for concurrent use; batch workers each own
// their own scope.
type Scope struct {
	input    map[string]any
	bindings map[string]any
	defaults map[string]any
}

// NewScope creates a scope seeded with the batch-row input and node-local
// defaults. Both maps are copied so later mutation by the caller cannot
// leak into a running flow.
func NewScope(input, defaults map[string]any) *Scope {
	s := &Scope{
		input:    make(map[string]any, len(input)),
		bindings: make(map[string]any),
		defaults: make(map[string]any, len(defaults)),
	}
	for k, v := range input {
		s.input[k] = v
	}
	for k, v := range defaults {
		s.defaults[k] = v
	}
	return s
}

// Bind writes a node-output binding. Names are single-assignment; binding
// an existing name returns ErrAlreadyBound.
func (s *Scope) Bind(name string, value any) error {
	if _, exists := s.bindings[name]; exists {
		return fmt.Errorf("%q: %w", name, ErrAlreadyBound)
	}
	s.bindings[name] = value
	return nil
}

// SetDefault registers a node-local default consulted after bindings and
// row input.
func (s *Scope) SetDefault(name string, value any) {
	s.defaults[name] = value
}

// Lookup resolves a bare name through the layers: node-output bindings
// first, then batch-row input, then defaults.
func (s *Scope) Lookup(name string) (any, bool) {
	if v, ok := s.bindings[name]; ok {
		return v, true
	}
	if v, ok := s.input[name]; ok {
		return v, true
	}
	if v, ok := s.defaults[name]; ok {
		return v, true
	}
	return nil, false
}

// HasBinding reports whether a node-output binding exists for the name.
func (s *Scope) HasBinding(name string) bool {
	_, ok := s.bindings[name]
	return ok
}

// Input returns a copy of the batch-row input layer.
func (s *Scope) Input() map[string]any {
	out := make(map[string]any, len(s.input))
	for k, v := range s.input {
		out[k] = v
	}
	return out
}
