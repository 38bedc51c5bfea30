// SPDX-License-Identifier: Apache-2.0
package registration

import (
	"slices"

	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/validation"
	"github.com/Work-Fort/Intake/pkg/wizard"
)

// Render slots used by the terminal step renderer
const (
	SlotContact   = "contact"
	SlotAddress   = "address"
	SlotEquipment = "equipment"
	SlotAccount   = "account"
)

// ClinicRegistration is the four-step clinic sign-up wizard
func ClinicRegistration() wizard.Flow {
	return wizard.Flow{
		Name:   "clinic-registration",
		Fields: slices.Concat(contactFields(false), addressFields(), equipmentFields(), accountFields()),
		Steps: []wizard.Step{
			{Label: "Tell Us About Your Clinic!", Slot: SlotContact, Gate: wizard.All, Fields: []string{KeyName, KeyEmail, KeyPhone}},
			{Label: "Clinic Location", Slot: SlotAddress, Gate: wizard.All, Fields: []string{KeyStreet, KeyCity, KeyProvince}},
			{Label: "What equipment are you on?", Slot: SlotEquipment, Gate: wizard.Any, Fields: EquipmentKeys},
			{Label: "Secure your account", Slot: SlotAccount, Gate: wizard.All, Fields: []string{KeyPassword, KeyConfirmPassword}},
		},
		Schema: validation.NewSchema(slices.Concat(contactRules, addressRules, equipmentRules, accountRules)...),
	}
}

// ClientRegistration is the three-step client sign-up wizard
func ClientRegistration() wizard.Flow {
	return wizard.Flow{
		Name:   "client-registration",
		Fields: slices.Concat(contactFields(false), addressFields(), accountFields()),
		Steps: []wizard.Step{
			{Label: "Tell Us About Yourself!", Slot: SlotContact, Gate: wizard.All, Fields: []string{KeyName, KeyEmail, KeyPhone}},
			{Label: "Where do you live?", Slot: SlotAddress, Gate: wizard.All, Fields: []string{KeyStreet, KeyCity, KeyProvince}},
			{Label: "Secure your account", Slot: SlotAccount, Gate: wizard.All, Fields: []string{KeyPassword, KeyConfirmPassword}},
		},
		Schema: validation.NewSchema(slices.Concat(contactRules, addressRules, accountRules)...),
	}
}

// ClientProfile edits an existing client record. Email is the record id
// and cannot change.
func ClientProfile() wizard.Flow {
	return wizard.Flow{
		Name:   "client-profile",
		Fields: slices.Concat(contactFields(true), addressFields()),
		Steps: []wizard.Step{
			{Label: "Contact details", Slot: SlotContact, Gate: wizard.All, Fields: []string{KeyName, KeyEmail, KeyPhone}},
			{Label: "Address", Slot: SlotAddress, Gate: wizard.All, Fields: []string{KeyStreet, KeyCity, KeyProvince}},
		},
		Schema: validation.NewSchema(slices.Concat(contactRules, addressRules)...),
	}
}

// ClinicProfile edits an existing clinic record. The equipment step may be
// skipped, keeping whatever selection is already stored.
func ClinicProfile() wizard.Flow {
	return wizard.Flow{
		Name:   "clinic-profile",
		Fields: slices.Concat(contactFields(true), addressFields(), equipmentFields()),
		Steps: []wizard.Step{
			{Label: "Contact details", Slot: SlotContact, Gate: wizard.All, Fields: []string{KeyName, KeyEmail, KeyPhone}},
			{Label: "Address", Slot: SlotAddress, Gate: wizard.All, Fields: []string{KeyStreet, KeyCity, KeyProvince}},
			{Label: "Equipment", Slot: SlotEquipment, Gate: wizard.Any, Optional: true, Fields: EquipmentKeys},
		},
		Schema: validation.NewSchema(slices.Concat(contactRules, addressRules, equipmentRules)...),
	}
}

// RegistrationFlow returns the sign-up flow for a role
func RegistrationFlow(role Role) wizard.Flow {
	if role == RoleClinic {
		return ClinicRegistration()
	}
	return ClientRegistration()
}

// ProfileFlow returns the profile-edit flow for a role
func ProfileFlow(role Role) wizard.Flow {
	if role == RoleClinic {
		return ClinicProfile()
	}
	return ClientProfile()
}

// FieldByKey finds a declared field in a flow
func FieldByKey(flow wizard.Flow, key string) (form.Field, bool) {
	for _, f := range flow.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return form.Field{}, false
}
