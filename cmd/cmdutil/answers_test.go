// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/Work-Fort/Intake/pkg/identity"
	"github.com/Work-Fort/Intake/pkg/registration"
	"github.com/Work-Fort/Intake/pkg/store"
)

func TestAnswerFlagsResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	content := "name: From File\nemail: file@example.com\ncity: Truro\nequipment:\n  standard: [standard1]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var flags AnswerFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bind(fs, true)
	err := fs.Parse([]string{
		"--answers", path,
		"--name", "From Flag",
		"--equipment", "clinical=clinical2,clinical3",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	answers, err := flags.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"flag overrides file", answers.Name, "From Flag"},
		{"file fills gaps", answers.Email, "file@example.com"},
		{"file city", answers.City, "Truro"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if got := answers.Equipment["standard"]; len(got) != 1 || got[0] != "standard1" {
		t.Errorf("standard equipment = %v", got)
	}
	if got := answers.Equipment["clinical"]; len(got) != 2 {
		t.Errorf("clinical equipment = %v", got)
	}
}

func TestAnswerFlagsWithoutEmail(t *testing.T) {
	var flags AnswerFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bind(fs, false)
	if fs.Lookup("email") != nil {
		t.Error("email flag bound when withEmail is false")
	}
	if fs.Lookup("province") == nil {
		t.Error("province flag missing")
	}
}

func TestAnswerFlagsBadEquipment(t *testing.T) {
	flags := AnswerFlags{Equipment: []string{"no-equals-sign"}}
	if _, err := flags.Resolve(); err == nil {
		t.Error("Resolve should reject a malformed equipment entry")
	}
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	accounts := identity.NewAccounts(store.NewMemory(), identity.WithHashCost(bcrypt.MinCost))
	if _, err := accounts.Create(ctx, "desk@acme.example", "hunter22", string(registration.RoleClinic)); err != nil {
		t.Fatal(err)
	}

	if _, err := SignIn(ctx, accounts, "desk@acme.example", "hunter22", ""); !errors.Is(err, identity.ErrNotVerified) {
		t.Fatalf("unverified sign-in error = %v, want ErrNotVerified", err)
	}
	if _, err := accounts.MarkVerified(ctx, "desk@acme.example"); err != nil {
		t.Fatal(err)
	}

	session, err := SignIn(ctx, accounts, "Desk@Acme.example", "hunter22", "")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if session.Role != registration.RoleClinic || session.Email != "desk@acme.example" {
		t.Errorf("session = %+v", session)
	}

	if _, err := SignIn(ctx, accounts, "desk@acme.example", "hunter22", registration.RoleClient); !errors.Is(err, ErrRoleMismatch) {
		t.Errorf("role mismatch error = %v", err)
	}
	if _, err := SignIn(ctx, accounts, "desk@acme.example", "wrong", ""); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("bad password error = %v", err)
	}
}
