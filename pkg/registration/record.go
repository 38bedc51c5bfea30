// SPDX-License-Identifier: Apache-2.0
package registration

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/Work-Fort/Intake/pkg/form"
)

// SchemaVersion is written into every new record
const SchemaVersion = "1.1.0"

// legacySchemaVersion is assumed for records written before versioning
const legacySchemaVersion = "1.0.0"

// supportedSchema bounds the record versions this build can seed from
var supportedSchema = version.MustConstraints(version.NewConstraint(">= 1.0, < 2.0"))

// ErrUnsupportedSchema is returned for records written by an incompatible version
var ErrUnsupportedSchema = errors.New("unsupported record schema version")

// Record is the stored profile document. Credentials are never part of it.
type Record struct {
	ID                  string    `json:"id"`
	Role                Role      `json:"role"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	Street              string    `json:"street"`
	City                string    `json:"city"`
	Province            string    `json:"province"`
	StandardEquipment   []string  `json:"standardEquipment,omitempty"`
	ClinicalEquipment   []string  `json:"clinicalEquipment,omitempty"`
	DiagnosticEquipment []string  `json:"diagnosticEquipment,omitempty"`
	LaboratoryEquipment []string  `json:"laboratoryEquipment,omitempty"`
	SchemaVersion       string    `json:"schema_version"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// RecordFromSnapshot copies the profile fields of a submitted wizard
func RecordFromSnapshot(role Role, s form.Snapshot) Record {
	r := Record{
		Role:          role,
		Name:          s.Text(KeyName),
		Email:         s.Text(KeyEmail),
		Phone:         s.Text(KeyPhone),
		Street:        s.Text(KeyStreet),
		City:          s.Text(KeyCity),
		Province:      s.Text(KeyProvince),
		SchemaVersion: SchemaVersion,
	}
	if role == RoleClinic {
		r.StandardEquipment = s.Items(KeyStandardEquipment)
		r.ClinicalEquipment = s.Items(KeyClinicalEquipment)
		r.DiagnosticEquipment = s.Items(KeyDiagnosticEquipment)
		r.LaboratoryEquipment = s.Items(KeyLaboratoryEquipment)
	}
	return r
}

// Apply overwrites the editable fields of r from a snapshot, keeping its
// identity and creation time
func (r Record) Apply(s form.Snapshot) Record {
	next := RecordFromSnapshot(r.Role, s)
	next.ID = r.ID
	next.Email = r.Email
	next.CreatedAt = r.CreatedAt
	return next
}

// Snapshot converts the record into wizard seed data
func (r Record) Snapshot() form.Snapshot {
	values := map[string]form.Value{
		KeyName:     form.Text(r.Name),
		KeyEmail:    form.Text(r.Email),
		KeyPhone:    form.Text(r.Phone),
		KeyStreet:   form.Text(r.Street),
		KeyCity:     form.Text(r.City),
		KeyProvince: form.Text(r.Province),
	}
	if r.Role == RoleClinic {
		values[KeyStandardEquipment] = form.List(r.StandardEquipment...)
		values[KeyClinicalEquipment] = form.List(r.ClinicalEquipment...)
		values[KeyDiagnosticEquipment] = form.List(r.DiagnosticEquipment...)
		values[KeyLaboratoryEquipment] = form.List(r.LaboratoryEquipment...)
	}
	return form.NewSnapshot(values)
}

// CheckSchema rejects records this build does not know how to edit
func (r Record) CheckSchema() error {
	raw := r.SchemaVersion
	if raw == "" {
		raw = legacySchemaVersion
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedSchema, raw, err)
	}
	if !supportedSchema.Check(v) {
		return fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedSchema, v, supportedSchema)
	}
	return nil
}
