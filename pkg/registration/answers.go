// SPDX-License-Identifier: Apache-2.0
package registration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/wizard"
)

// ErrUnknownEquipmentGroup is returned for an equipment group the flow does not ask for
var ErrUnknownEquipmentGroup = errors.New("unknown equipment group")

// Answers are pre-filled wizard values from an answers file or flags.
// Passwords are never read from here.
type Answers struct {
	Name      string              `yaml:"name,omitempty"`
	Email     string              `yaml:"email,omitempty"`
	Phone     string              `yaml:"phone,omitempty"`
	Street    string              `yaml:"street,omitempty"`
	City      string              `yaml:"city,omitempty"`
	Province  string              `yaml:"province,omitempty"`
	Equipment map[string][]string `yaml:"equipment,omitempty"` // group ("standard") to option values
}

// LoadAnswers reads an answers YAML file
func LoadAnswers(path string) (Answers, error) {
	var a Answers
	data, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("read answers: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil && !errors.Is(err, io.EOF) {
		return a, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return a, nil
}

// ParseEquipment parses repeated "group=value,value" flag entries
func ParseEquipment(entries []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, entry := range entries {
		group, values, ok := strings.Cut(entry, "=")
		group = strings.TrimSpace(group)
		if !ok || group == "" {
			return nil, fmt.Errorf("invalid equipment %q: want group=value[,value]", entry)
		}
		for _, v := range strings.Split(values, ",") {
			if v = strings.TrimSpace(v); v != "" && !slices.Contains(out[group], v) {
				out[group] = append(out[group], v)
			}
		}
	}
	return out, nil
}

// Merge overlays non-empty values from other
func (a Answers) Merge(other Answers) Answers {
	pick := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	pick(&a.Name, other.Name)
	pick(&a.Email, other.Email)
	pick(&a.Phone, other.Phone)
	pick(&a.Street, other.Street)
	pick(&a.City, other.City)
	pick(&a.Province, other.Province)
	if len(other.Equipment) > 0 {
		merged := make(map[string][]string, len(a.Equipment)+len(other.Equipment))
		for g, v := range a.Equipment {
			merged[g] = v
		}
		for g, v := range other.Equipment {
			merged[g] = v
		}
		a.Equipment = merged
	}
	return a
}

// Snapshot maps the answers onto the fields flow declares. Scalars the flow
// does not declare are dropped; equipment for an undeclared group is an error.
func (a Answers) Snapshot(flow wizard.Flow) (form.Snapshot, error) {
	declared := make(map[string]form.Field, len(flow.Fields))
	for _, f := range flow.Fields {
		declared[f.Key] = f
	}

	values := make(map[string]form.Value)
	for key, text := range map[string]string{
		KeyName:     a.Name,
		KeyEmail:    a.Email,
		KeyPhone:    a.Phone,
		KeyStreet:   a.Street,
		KeyCity:     a.City,
		KeyProvince: a.Province,
	} {
		if f, ok := declared[key]; ok && text != "" && !f.ReadOnly {
			values[key] = form.Text(text)
		}
	}

	for group, items := range a.Equipment {
		key := group + "Equipment"
		f, ok := declared[key]
		if !ok || f.Kind != form.Collection {
			return form.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownEquipmentGroup, group)
		}
		for _, item := range items {
			if !f.HasOption(item) {
				return form.Snapshot{}, fmt.Errorf("%w: %s has no option %q", ErrUnknownEquipmentGroup, group, item)
			}
		}
		values[key] = form.List(items...)
	}

	return form.NewSnapshot(values), nil
}
