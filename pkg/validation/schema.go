// SPDX-License-Identifier: Apache-2.0
package validation

import (
	"sort"

	"github.com/Work-Fort/Intake/pkg/form"
)

// Entry binds an ordered list of rules to one field key
type Entry struct {
	Key   string
	Rules []Rule
}

// Field creates a schema entry
func Field(key string, rules ...Rule) Entry {
	return Entry{Key: key, Rules: rules}
}

// Schema is the declarative rule set for a whole model
type Schema struct {
	entries []Entry
}

// NewSchema creates a schema from entries. Later entries for the same key
// append to earlier ones.
func NewSchema(entries ...Entry) Schema {
	merged := make([]Entry, 0, len(entries))
	pos := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := pos[e.Key]; ok {
			merged[i].Rules = append(merged[i].Rules, e.Rules...)
			continue
		}
		pos[e.Key] = len(merged)
		merged = append(merged, Entry{Key: e.Key, Rules: append([]Rule(nil), e.Rules...)})
	}
	return Schema{entries: merged}
}

// Keys returns every key that has at least one rule
func (s Schema) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}
	return keys
}

// Validate maps the model to its per-field errors. The first failing rule
// of a field wins. Validate has no side effects: the same model always
// yields the same result.
func (s Schema) Validate(m form.Model) Errors {
	out := make(map[string]string)
	for _, e := range s.entries {
		for _, r := range e.Rules {
			if msg := r.Check(e.Key, m); msg != "" {
				out[e.Key] = msg
				break
			}
		}
	}
	return Errors{byField: out}
}

// Errors is the read-only result of Validate
type Errors struct {
	byField map[string]string
}

// Has reports whether key has an error
func (e Errors) Has(key string) bool {
	_, ok := e.byField[key]
	return ok
}

// Get returns the error message for key, or ""
func (e Errors) Get(key string) string {
	return e.byField[key]
}

// Empty reports whether no field has an error
func (e Errors) Empty() bool {
	return len(e.byField) == 0
}

// Len returns the number of fields with errors
func (e Errors) Len() int {
	return len(e.byField)
}

// Fields returns the keys with errors, sorted
func (e Errors) Fields() []string {
	keys := make([]string, 0, len(e.byField))
	for k := range e.byField {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the field to message mapping
func (e Errors) Map() map[string]string {
	out := make(map[string]string, len(e.byField))
	for k, v := range e.byField {
		out[k] = v
	}
	return out
}
