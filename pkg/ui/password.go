// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrPasswordMismatch is returned when the confirmation differs
var ErrPasswordMismatch = errors.New("Your passwords do not match!")

// PasswordInput prompts for a single password with masked input
func PasswordInput(title, placeholder string) (string, error) {
	var password string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder(placeholder).
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("Password is required!")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return "", err
	}

	return password, nil
}

// PasswordInputConfirm prompts for a password twice and validates they match
func PasswordInputConfirm(title, confirmTitle string) (string, error) {
	var password string
	var confirm string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder("Enter password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("Password is required!")
					}
					return nil
				}),
			huh.NewInput().
				Title(confirmTitle).
				Placeholder("Re-enter password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(s string) error {
					if s != password {
						return ErrPasswordMismatch
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}

	if password != confirm {
		return "", ErrPasswordMismatch
	}

	return password, nil
}
