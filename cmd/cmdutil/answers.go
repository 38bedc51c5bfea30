// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"github.com/spf13/pflag"

	"github.com/Work-Fort/Intake/pkg/registration"
)

// AnswerFlags are the field flags shared by register and profile edit
type AnswerFlags struct {
	Answers   registration.Answers
	File      string
	Equipment []string
}

// Bind adds the field flags to fs. withEmail is false where the email
// identifies the account instead of being an answer.
func (a *AnswerFlags) Bind(fs *pflag.FlagSet, withEmail bool) {
	fs.StringVar(&a.Answers.Name, "name", "", "Name of the clinic or client")
	if withEmail {
		fs.StringVar(&a.Answers.Email, "email", "", "Email address (account login)")
	}
	fs.StringVar(&a.Answers.Phone, "phone", "", "Phone number")
	fs.StringVar(&a.Answers.Street, "street", "", "Street address")
	fs.StringVar(&a.Answers.City, "city", "", "City")
	fs.StringVar(&a.Answers.Province, "province", "", "Province")
	fs.StringArrayVar(&a.Equipment, "equipment", nil, "Clinic equipment as group=value[,value] (repeatable)")
	fs.StringVar(&a.File, "answers", "", "YAML file with answers (flags take precedence)")
}

// Resolve merges the answers file with flag values
func (a AnswerFlags) Resolve() (registration.Answers, error) {
	var answers registration.Answers
	if a.File != "" {
		loaded, err := registration.LoadAnswers(a.File)
		if err != nil {
			return answers, err
		}
		answers = loaded
	}

	overrides := a.Answers
	if len(a.Equipment) > 0 {
		equipment, err := registration.ParseEquipment(a.Equipment)
		if err != nil {
			return answers, err
		}
		overrides.Equipment = equipment
	}
	return answers.Merge(overrides), nil
}
