// SPDX-License-Identifier: Apache-2.0
package form

import (
	"slices"
	"sort"
)

// Snapshot is a detached copy of a Model's values at one instant.
// Later edits to the wizard never show up in an existing Snapshot.
type Snapshot struct {
	values map[string]Value
	order  []string
}

// NewSnapshot builds a snapshot from explicit values (used for seeding)
func NewSnapshot(values map[string]Value) Snapshot {
	s := Snapshot{values: make(map[string]Value, len(values))}
	for k, v := range values {
		if v.kind == Collection {
			v = List(v.items...)
		}
		s.values[k] = v
		s.order = append(s.order, k)
	}
	sort.Strings(s.order)
	return s
}

// Keys returns the snapshot keys in declaration order
func (s Snapshot) Keys() []string {
	return slices.Clone(s.order)
}

// Get returns the value stored for key
func (s Snapshot) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Text returns the scalar text for key, or "" when absent
func (s Snapshot) Text(key string) string {
	return s.values[key].text
}

// Items returns a copy of the collection for key
func (s Snapshot) Items(key string) []string {
	return s.values[key].Items()
}

// Map renders the snapshot as plain Go values (string or []string)
func (s Snapshot) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		if v.kind == Collection {
			out[k] = v.Items()
			continue
		}
		out[k] = v.text
	}
	return out
}

// Without returns a copy of the snapshot minus the given keys
func (s Snapshot) Without(keys ...string) Snapshot {
	values := make(map[string]Value, len(s.values))
	order := make([]string, 0, len(s.order))
	for _, k := range s.order {
		if slices.Contains(keys, k) {
			continue
		}
		values[k] = s.values[k]
		order = append(order, k)
	}
	return Snapshot{values: values, order: order}
}

// Equal reports whether both snapshots hold identical keys and values
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for k, v := range s.values {
		ov, ok := other.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
