// SPDX-License-Identifier: Apache-2.0
package validation

import (
	"regexp"

	"github.com/Work-Fort/Intake/pkg/form"
)

// EmailPattern is the shape accepted by Email
var EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Rule checks one field of a model and returns an error message, or ""
type Rule interface {
	Check(key string, m form.Model) string
}

// RuleFunc adapts a function to the Rule interface
type RuleFunc func(key string, m form.Model) string

// Check implements Rule
func (f RuleFunc) Check(key string, m form.Model) string {
	return f(key, m)
}

// Required fails on an empty string or an empty collection
func Required(message string) Rule {
	return RuleFunc(func(key string, m form.Model) string {
		if m.Get(key).IsEmpty() {
			return message
		}
		return ""
	})
}

// Email fails when a non-empty scalar does not look like an address
func Email(message string) Rule {
	return Matches(EmailPattern, message)
}

// Matches fails when a non-empty scalar does not match pattern
func Matches(pattern *regexp.Regexp, message string) Rule {
	return RuleFunc(func(key string, m form.Model) string {
		v := m.Get(key)
		if v.IsEmpty() || v.Kind() != form.Scalar {
			return ""
		}
		if !pattern.MatchString(v.String()) {
			return message
		}
		return ""
	})
}

// EqualsField fails when the value differs from another field's value
// (confirmation inputs)
func EqualsField(other, message string) Rule {
	return RuleFunc(func(key string, m form.Model) string {
		if !m.Get(key).Equal(m.Get(other)) {
			return message
		}
		return ""
	})
}

// SubsetOf fails when a collection holds a token that is not one of the
// field's declared options. An empty collection always passes.
func SubsetOf(message string) Rule {
	return RuleFunc(func(key string, m form.Model) string {
		f, ok := m.Field(key)
		if !ok || f.Kind != form.Collection {
			return ""
		}
		for _, item := range m.Get(key).Items() {
			if !f.HasOption(item) {
				return message
			}
		}
		return ""
	})
}
