// SPDX-License-Identifier: Apache-2.0
package wizard

import (
	"errors"
	"fmt"

	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/validation"
)

// ErrInvalidFlow is returned when a flow's steps do not partition its fields
var ErrInvalidFlow = errors.New("invalid flow")

// Step describes one wizard page
type Step struct {
	Label    string
	Slot     string // Render slot used by the step renderer
	Optional bool
	Gate     Gate
	Fields   []string
}

// Flow is an ordered, fixed set of steps over a declared field model
type Flow struct {
	Name   string
	Fields []form.Field
	Steps  []Step
	Schema validation.Schema
}

// Validate checks that every declared field belongs to exactly one step
// and that steps and schema only reference declared fields
func (f Flow) Validate() error {
	if len(f.Steps) == 0 {
		return fmt.Errorf("%w: %s has no steps", ErrInvalidFlow, f.Name)
	}

	declared := make(map[string]bool, len(f.Fields))
	for _, field := range f.Fields {
		if declared[field.Key] {
			return fmt.Errorf("%w: %s declares %q twice", ErrInvalidFlow, f.Name, field.Key)
		}
		declared[field.Key] = true
	}

	owner := make(map[string]int, len(f.Fields))
	for i, step := range f.Steps {
		if step.Gate == nil {
			return fmt.Errorf("%w: %s step %d (%s) has no gate", ErrInvalidFlow, f.Name, i, step.Label)
		}
		if len(step.Fields) == 0 {
			return fmt.Errorf("%w: %s step %d (%s) has no fields", ErrInvalidFlow, f.Name, i, step.Label)
		}
		for _, key := range step.Fields {
			if !declared[key] {
				return fmt.Errorf("%w: %s step %d references undeclared field %q", ErrInvalidFlow, f.Name, i, key)
			}
			if prev, dup := owner[key]; dup {
				return fmt.Errorf("%w: %s field %q belongs to steps %d and %d", ErrInvalidFlow, f.Name, key, prev, i)
			}
			owner[key] = i
		}
	}

	for _, field := range f.Fields {
		if _, ok := owner[field.Key]; !ok {
			return fmt.Errorf("%w: %s field %q is not covered by any step", ErrInvalidFlow, f.Name, field.Key)
		}
	}

	for _, key := range f.Schema.Keys() {
		if !declared[key] {
			return fmt.Errorf("%w: %s schema references undeclared field %q", ErrInvalidFlow, f.Name, key)
		}
	}

	return nil
}

// NewModel creates the empty field model for this flow
func (f Flow) NewModel() (form.Model, error) {
	return form.New(f.Fields...)
}

// StepOf returns the index of the step owning key, or -1
func (f Flow) StepOf(key string) int {
	for i, step := range f.Steps {
		for _, k := range step.Fields {
			if k == key {
				return i
			}
		}
	}
	return -1
}
