// SPDX-License-Identifier: Apache-2.0
package form

import (
	"errors"
	"fmt"
	"maps"
)

var (
	// ErrUnknownField is returned when a key was never declared
	ErrUnknownField = errors.New("unknown field")
	// ErrKindMismatch is returned when a value does not match the field kind
	ErrKindMismatch = errors.New("value kind does not match field")
	// ErrDuplicateField is returned by New when two fields share a key
	ErrDuplicateField = errors.New("duplicate field")
)

// Model is the immutable set of current wizard values.
// Every mutation returns a new Model; earlier Models are never modified.
type Model struct {
	fields []Field
	index  map[string]int
	values map[string]Value
}

// New creates a Model with the empty default for every declared field
func New(fields ...Field) (Model, error) {
	m := Model{
		fields: fields,
		index:  make(map[string]int, len(fields)),
		values: make(map[string]Value, len(fields)),
	}
	for i, f := range fields {
		if _, dup := m.index[f.Key]; dup {
			return Model{}, fmt.Errorf("%w: %s", ErrDuplicateField, f.Key)
		}
		m.index[f.Key] = i
		m.values[f.Key] = Empty(f.Kind)
	}
	return m, nil
}

// MustNew is New for static field tables; it panics on duplicate keys
func MustNew(fields ...Field) Model {
	m, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return m
}

// Fields returns the declared fields in order
func (m Model) Fields() []Field {
	return m.fields
}

// Keys returns the declared keys in order
func (m Model) Keys() []string {
	keys := make([]string, len(m.fields))
	for i, f := range m.fields {
		keys[i] = f.Key
	}
	return keys
}

// Field returns the declaration for key
func (m Model) Field(key string) (Field, bool) {
	i, ok := m.index[key]
	if !ok {
		return Field{}, false
	}
	return m.fields[i], true
}

// Has reports whether key was declared
func (m Model) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Get returns the current value for key (zero Value when unknown)
func (m Model) Get(key string) Value {
	return m.values[key]
}

// With returns a copy of the model with key set to v
func (m Model) With(key string, v Value) (Model, error) {
	f, ok := m.Field(key)
	if !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if f.Kind != v.Kind() {
		return m, fmt.Errorf("%w: %s is a %s field", ErrKindMismatch, key, f.Kind)
	}
	if v.kind == Collection && v.items == nil {
		v = Empty(Collection)
	}
	return m.replaced(map[string]Value{key: v}), nil
}

// Toggle returns a copy of the model with option added to or removed from
// the collection field key
func (m Model) Toggle(key, option string) (Model, error) {
	f, ok := m.Field(key)
	if !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if f.Kind != Collection {
		return m, fmt.Errorf("%w: %s is a %s field", ErrKindMismatch, key, f.Kind)
	}
	return m.replaced(map[string]Value{key: m.values[key].toggled(option)}), nil
}

// Replace bulk-loads values from a snapshot. Declared keys missing from the
// snapshot reset to their empty default; undeclared keys are ignored.
func (m Model) Replace(s Snapshot) (Model, error) {
	next := make(map[string]Value, len(m.fields))
	for _, f := range m.fields {
		v, ok := s.values[f.Key]
		if !ok {
			next[f.Key] = Empty(f.Kind)
			continue
		}
		if v.Kind() != f.Kind {
			return m, fmt.Errorf("%w: %s is a %s field", ErrKindMismatch, f.Key, f.Kind)
		}
		if f.Kind == Collection {
			next[f.Key] = List(v.items...)
		} else {
			next[f.Key] = Text(v.text)
		}
	}
	return Model{fields: m.fields, index: m.index, values: next}, nil
}

// Snapshot captures an immutable copy of the current values
func (m Model) Snapshot() Snapshot {
	values := make(map[string]Value, len(m.values))
	for k, v := range m.values {
		if v.kind == Collection {
			v = List(v.items...)
		}
		values[k] = v
	}
	return Snapshot{values: values, order: m.Keys()}
}

func (m Model) replaced(changes map[string]Value) Model {
	values := maps.Clone(m.values)
	maps.Copy(values, changes)
	return Model{fields: m.fields, index: m.index, values: values}
}
