// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"github.com/charmbracelet/huh"
)

// Confirm shows a yes/no confirmation dialog using huh
func Confirm(prompt, description string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Description(description).
				Affirmative("Submit").
				Negative("Cancel").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}
