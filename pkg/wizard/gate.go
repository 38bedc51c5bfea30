// SPDX-License-Identifier: Apache-2.0
package wizard

import (
	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/validation"
)

// Gate decides whether forward navigation out of a step is permitted.
// Each Step carries its own Gate, so adding a gate kind never touches the
// controller's transition logic.
type Gate interface {
	Kind() string
	Satisfied(fields []string, m form.Model, errs validation.Errors) bool
}

// AllGate requires every field of the step to be non-empty and error-free
type AllGate struct{}

// Kind implements Gate
func (AllGate) Kind() string { return "all" }

// Satisfied implements Gate
func (AllGate) Satisfied(fields []string, m form.Model, errs validation.Errors) bool {
	for _, key := range fields {
		if errs.Has(key) || m.Get(key).IsEmpty() {
			return false
		}
	}
	return true
}

// AnyGate requires at least one collection field of the step to hold a
// selection. Empty sibling fields do not close the gate.
type AnyGate struct{}

// Kind implements Gate
func (AnyGate) Kind() string { return "any" }

// Satisfied implements Gate
func (AnyGate) Satisfied(fields []string, m form.Model, _ validation.Errors) bool {
	for _, key := range fields {
		v := m.Get(key)
		if v.Kind() == form.Collection && !v.IsEmpty() {
			return true
		}
	}
	return false
}

var (
	// All is the shared AllGate value
	All Gate = AllGate{}
	// Any is the shared AnyGate value
	Any Gate = AnyGate{}
)
