// SPDX-License-Identifier: Apache-2.0
package registration

import (
	"fmt"
	"regexp"

	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/validation"
)

// Field keys
const (
	KeyName                = "name"
	KeyEmail               = "email"
	KeyPhone               = "phone"
	KeyStreet              = "street"
	KeyCity                = "city"
	KeyProvince            = "province"
	KeyStandardEquipment   = "standardEquipment"
	KeyClinicalEquipment   = "clinicalEquipment"
	KeyDiagnosticEquipment = "diagnosticEquipment"
	KeyLaboratoryEquipment = "laboratoryEquipment"
	KeyPassword            = "password"
	KeyConfirmPassword     = "confirmPassword"
)

// EquipmentKeys lists the equipment groups in display order
var EquipmentKeys = []string{
	KeyStandardEquipment,
	KeyClinicalEquipment,
	KeyDiagnosticEquipment,
	KeyLaboratoryEquipment,
}

// SecretKeys are never written to a record or an answers file
var SecretKeys = []string{KeyPassword, KeyConfirmPassword}

// PhonePattern accepts international, parenthesised and dashed numbers
var PhonePattern = regexp.MustCompile(`^((\+[1-9]{1,4}[ \-]*)|(\([0-9]{2,3}\)[ \-]*)|([0-9]{2,4})[ \-]*)*?[0-9]{3,4}?[ \-]*[0-9]{3,4}?$`)

// equipmentOptions builds the ten options of an equipment group
func equipmentOptions(group, title string) []form.Option {
	opts := make([]form.Option, 0, 10)
	for i := 1; i <= 10; i++ {
		opts = append(opts, form.Option{
			Label: fmt.Sprintf("%s Equipment %d", title, i),
			Value: fmt.Sprintf("%s%d", group, i),
		})
	}
	return opts
}

func contactFields(emailReadOnly bool) []form.Field {
	return []form.Field{
		{Key: KeyName, Label: "Name", Kind: form.Scalar},
		{Key: KeyEmail, Label: "Email address", Kind: form.Scalar, Placeholder: "you@example.com", ReadOnly: emailReadOnly},
		{Key: KeyPhone, Label: "Phone number", Kind: form.Scalar, Placeholder: "(902) 555-0100"},
	}
}

func addressFields() []form.Field {
	return []form.Field{
		{Key: KeyStreet, Label: "Street", Kind: form.Scalar},
		{Key: KeyCity, Label: "City", Kind: form.Scalar},
		{Key: KeyProvince, Label: "Province", Kind: form.Scalar},
	}
}

func equipmentFields() []form.Field {
	return []form.Field{
		{Key: KeyStandardEquipment, Label: "Standard Equipment", Kind: form.Collection, Options: equipmentOptions("standard", "Standard")},
		{Key: KeyClinicalEquipment, Label: "Clinical Equipment", Kind: form.Collection, Options: equipmentOptions("clinical", "Clinical")},
		{Key: KeyDiagnosticEquipment, Label: "Diagnostic Equipment", Kind: form.Collection, Options: equipmentOptions("diagnostic", "Diagnostic")},
		{Key: KeyLaboratoryEquipment, Label: "Laboratory Equipment", Kind: form.Collection, Options: equipmentOptions("laboratory", "Laboratory")},
	}
}

func accountFields() []form.Field {
	return []form.Field{
		{Key: KeyPassword, Label: "Password", Kind: form.Scalar, Secret: true},
		{Key: KeyConfirmPassword, Label: "Confirm Password", Kind: form.Scalar, Secret: true},
	}
}

// Validation rules shared by every flow. Flows only include the entries for
// the fields they declare.
var (
	contactRules = []validation.Entry{
		validation.Field(KeyName, validation.Required("We need to call you something!")),
		validation.Field(KeyEmail,
			validation.Required("Email is required!"),
			validation.Email("Please enter a valid email!")),
		validation.Field(KeyPhone,
			validation.Required("Phone number is required!"),
			validation.Matches(PhonePattern, "That doesn't look like a phone number")),
	}

	addressRules = []validation.Entry{
		validation.Field(KeyStreet, validation.Required("Street is required!")),
		validation.Field(KeyCity, validation.Required("City is required!")),
		validation.Field(KeyProvince, validation.Required("Province is required!")),
	}

	equipmentRules = []validation.Entry{
		validation.Field(KeyStandardEquipment, validation.SubsetOf("Unknown standard equipment")),
		validation.Field(KeyClinicalEquipment, validation.SubsetOf("Unknown clinical equipment")),
		validation.Field(KeyDiagnosticEquipment, validation.SubsetOf("Unknown diagnostic equipment")),
		validation.Field(KeyLaboratoryEquipment, validation.SubsetOf("Unknown laboratory equipment")),
	}

	accountRules = []validation.Entry{
		validation.Field(KeyPassword, validation.Required("Password is required!")),
		validation.Field(KeyConfirmPassword,
			validation.Required("Password is required!"),
			validation.EqualsField(KeyPassword, "Your passwords do not match!")),
	}
)
