// SPDX-License-Identifier: Apache-2.0
package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGateClosed is returned by Advance when the current step is not satisfied
	ErrGateClosed = errors.New("current step is not complete")
	// ErrNoPreviousStep is returned by Retreat on the first step
	ErrNoPreviousStep = errors.New("already on the first step")
	// ErrFinished is returned by navigation after a successful submission
	ErrFinished = errors.New("wizard already submitted")
	// ErrReadOnlyField is returned when editing a read-only field
	ErrReadOnlyField = errors.New("field is read-only")
	// ErrAlreadyRun is returned when a submission is dispatched twice
	ErrAlreadyRun = errors.New("submission already dispatched")

	// ErrInvariant marks wiring bugs in the caller (never user input errors)
	ErrInvariant = errors.New("wizard invariant violated")
)

// InvariantError reports an operation the UI should never have exposed
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("wizard %s: %s", e.Op, e.Reason)
}

// Unwrap lets errors.Is match ErrInvariant
func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// IsInvariant reports whether err is a programming error signal
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// IncompleteError lists the blocking field errors of a step whose gate is closed
type IncompleteError struct {
	Step   string
	Fields map[string]string
}

func (e *IncompleteError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("step %q is incomplete", e.Step)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, key := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Fields[key]))
	}
	return fmt.Sprintf("step %q is incomplete (%s)", e.Step, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrGateClosed
func (e *IncompleteError) Unwrap() error {
	return ErrGateClosed
}
