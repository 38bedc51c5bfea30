// SPDX-License-Identifier: Apache-2.0
package form

import (
	"slices"
	"strings"
)

// Kind distinguishes scalar inputs from multi-select inputs
type Kind int

const (
	Scalar Kind = iota
	Collection
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Collection:
		return "collection"
	default:
		return "unknown"
	}
}

// Value holds either a string or an ordered list of tokens.
// The zero Value is an empty scalar.
type Value struct {
	kind  Kind
	text  string
	items []string
}

// Text creates a scalar value
func Text(s string) Value {
	return Value{kind: Scalar, text: s}
}

// List creates a collection value. The items slice is copied.
func List(items ...string) Value {
	cloned := make([]string, len(items))
	copy(cloned, items)
	return Value{kind: Collection, items: cloned}
}

// Empty returns the declared empty default for a kind
func Empty(kind Kind) Value {
	if kind == Collection {
		return Value{kind: Collection, items: []string{}}
	}
	return Value{kind: Scalar}
}

// Kind reports whether the value is a scalar or a collection
func (v Value) Kind() Kind {
	return v.kind
}

// IsEmpty reports an empty string or a collection with no items
func (v Value) IsEmpty() bool {
	if v.kind == Collection {
		return len(v.items) == 0
	}
	return v.text == ""
}

// String returns the scalar text, or the items joined by commas
func (v Value) String() string {
	if v.kind == Collection {
		return strings.Join(v.items, ",")
	}
	return v.text
}

// Items returns a copy of the collection items (nil for scalars)
func (v Value) Items() []string {
	if v.kind != Collection {
		return nil
	}
	out := make([]string, len(v.items))
	copy(out, v.items)
	return out
}

// Contains reports whether a collection value holds the token
func (v Value) Contains(token string) bool {
	return v.kind == Collection && slices.Contains(v.items, token)
}

// Equal compares kind and contents
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == Collection {
		return slices.Equal(v.items, other.items)
	}
	return v.text == other.text
}

// toggled returns a new collection with token added or removed.
// The receiver's backing array is never written to.
func (v Value) toggled(token string) Value {
	if i := slices.Index(v.items, token); i >= 0 {
		next := make([]string, 0, len(v.items)-1)
		next = append(next, v.items[:i]...)
		next = append(next, v.items[i+1:]...)
		return Value{kind: Collection, items: next}
	}
	next := make([]string, 0, len(v.items)+1)
	next = append(next, v.items...)
	next = append(next, token)
	return Value{kind: Collection, items: next}
}
