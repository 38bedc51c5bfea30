// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Work-Fort/Intake/pkg/ui"
)

// PasswordSource indicates how to retrieve the account password
type PasswordSource int

const (
	// PasswordSourceAuto tries stdin, then ENV, then falls back to TUI
	PasswordSourceAuto PasswordSource = iota
	// PasswordSourceEnv reads password from environment variable only
	PasswordSourceEnv
	// PasswordSourceStdin reads password from stdin
	PasswordSourceStdin
	// PasswordSourceTUI uses interactive TUI prompt
	PasswordSourceTUI
)

const (
	// EnvPassword is the environment variable name for the account password
	EnvPassword = "INTAKE_PASSWORD"
)

// GetPassword retrieves the password using the specified source. confirm
// asks twice when prompting interactively.
func GetPassword(source PasswordSource, prompt string, confirm bool) (string, error) {
	switch source {
	case PasswordSourceEnv:
		return getPasswordFromEnv()
	case PasswordSourceStdin:
		return readPassword(os.Stdin)
	case PasswordSourceTUI:
		return getPasswordFromTUI(prompt, confirm)
	case PasswordSourceAuto:
		stat, err := os.Stdin.Stat()
		if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
			// Stdin is a pipe, not a terminal
			if password, err := readPassword(os.Stdin); err == nil {
				return password, nil
			}
		}

		if password, err := getPasswordFromEnv(); err == nil {
			return password, nil
		}

		return getPasswordFromTUI(prompt, confirm)
	default:
		return "", fmt.Errorf("invalid password source: %d", source)
	}
}

func getPasswordFromEnv() (string, error) {
	password := os.Getenv(EnvPassword)
	if password == "" {
		return "", fmt.Errorf("environment variable %s not set", EnvPassword)
	}
	return password, nil
}

// readPassword reads a single line and trims whitespace
func readPassword(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return "", fmt.Errorf("no input from stdin")
	}

	password := strings.TrimSpace(scanner.Text())
	if password == "" {
		return "", fmt.Errorf("empty password from stdin")
	}

	return password, nil
}

func getPasswordFromTUI(prompt string, confirm bool) (string, error) {
	var (
		password string
		err      error
	)
	if confirm {
		password, err = ui.PasswordInputConfirm(prompt, "Confirm Password")
	} else {
		password, err = ui.PasswordInput(prompt, "Enter password")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get password from TUI: %w", err)
	}
	return password, nil
}

// ParsePasswordSource parses a string into a PasswordSource
func ParsePasswordSource(s string) (PasswordSource, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return PasswordSourceAuto, nil
	case "env":
		return PasswordSourceEnv, nil
	case "stdin":
		return PasswordSourceStdin, nil
	case "tui":
		return PasswordSourceTUI, nil
	default:
		return PasswordSourceAuto, fmt.Errorf("invalid password source: %s (valid: auto, env, stdin, tui)", s)
	}
}
