// SPDX-License-Identifier: Apache-2.0
package form

// Option is one selectable entry of a collection field
type Option struct {
	Label string
	Value string
}

// Field declares a single wizard input
type Field struct {
	Key         string
	Label       string
	Kind        Kind
	Placeholder string
	Secret      bool // Masked input (passwords)
	ReadOnly    bool // Displayed but never edited (e.g. profile email)
	Options     []Option
}

// OptionValues returns the raw values of the field's options
func (f Field) OptionValues() []string {
	values := make([]string, len(f.Options))
	for i, opt := range f.Options {
		values[i] = opt.Value
	}
	return values
}

// HasOption reports whether value is one of the field's declared options
func (f Field) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
