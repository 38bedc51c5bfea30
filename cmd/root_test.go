// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
)

func TestRootRegistersCommands(t *testing.T) {
	root := GetRootCommand()
	for _, name := range []string{"init", "register", "profile", "verify", "login", "config", "version", "completion"} {
		found, _, err := root.Find([]string{name})
		if err != nil || found == root {
			t.Errorf("command %q not registered", name)
		}
	}

	for _, flag := range []string{"log-level", "use-tui", "store", "metrics-addr"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestHelpMarkdown(t *testing.T) {
	root := GetRootCommand()
	md := cmdutil.HelpMarkdown(root)

	if !strings.HasPrefix(md, "# intake\n") {
		t.Errorf("help should start with the command name, got %q", md[:20])
	}
	if !strings.Contains(md, "## Available Commands") {
		t.Error("help should list subcommands")
	}
	if !strings.Contains(md, "- **register** - Register a new clinic or client account") {
		t.Error("help should describe register")
	}

	register, _, err := root.Find([]string{"register"})
	if err != nil {
		t.Fatal(err)
	}
	md = cmdutil.HelpMarkdown(register)
	for _, section := range []string{"## Usage", "## Flags", "## Global Flags", "## Examples"} {
		if !strings.Contains(md, section) {
			t.Errorf("register help missing %q:\n%s", section, md)
		}
	}

	if usage := cmdutil.UsageMarkdown(register); !strings.HasPrefix(usage, "### Usage") {
		t.Errorf("usage should start with the usage line, got:\n%s", usage)
	}
}

func TestCompletionShells(t *testing.T) {
	root := GetRootCommand()
	for _, shell := range []string{"bash", "zsh", "fish"} {
		cmd, _, err := root.Find([]string{"completion", shell})
		if err != nil || cmd.Name() != shell {
			t.Errorf("completion %s not registered", shell)
			continue
		}
		var out bytes.Buffer
		cmd.SetOut(&out)
		if err := cmd.RunE(cmd, nil); err != nil {
			t.Errorf("completion %s: %v", shell, err)
		}
		if out.Len() == 0 {
			t.Errorf("completion %s wrote nothing", shell)
		}
	}

	completion, _, _ := root.Find([]string{"completion"})
	for _, sub := range completion.Commands() {
		if sub.Name() == "powershell" {
			t.Error("powershell completion should not be offered")
		}
	}
}

func TestSetupLoggingDisabled(t *testing.T) {
	if err := setupLogging("disabled"); err != nil {
		t.Fatalf("setupLogging(disabled): %v", err)
	}
}
