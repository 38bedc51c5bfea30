// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/identity"
	"github.com/Work-Fort/Intake/pkg/notify"
	"github.com/Work-Fort/Intake/pkg/store"
)

func TestOpenServicesDryRun(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.InitViper()
	viper.Set("identity.token-secret", "")

	var out bytes.Buffer
	svc, err := OpenServices(context.Background(), ServiceOptions{DryRun: true, Out: &out})
	if err != nil {
		t.Fatalf("OpenServices: %v", err)
	}
	defer svc.Close()

	if _, ok := svc.Store.(*store.Memory); !ok {
		t.Errorf("dry run store = %T, want *store.Memory", svc.Store)
	}

	link, err := svc.Verifier.Link("vet@example.com")
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := svc.Mailer.Send(context.Background(), identity.VerificationMessage("vet@example.com", link)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(out.String(), "vet@example.com") {
		t.Errorf("dry-run mail not printed: %q", out.String())
	}

	reg := svc.Registration()
	if reg.Store == nil || reg.Accounts == nil || reg.Verifier == nil || reg.Mailer == nil {
		t.Errorf("Registration() left a collaborator unset: %+v", reg)
	}
}

func TestOpenServicesRequiresSecret(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.InitViper()
	viper.Set("store.backend", "memory")
	viper.Set("identity.token-secret", "")

	_, err := OpenServices(context.Background(), ServiceOptions{})
	if err == nil {
		t.Fatal("OpenServices should fail without a token secret")
	}
	if !strings.Contains(err.Error(), "INTAKE_IDENTITY_TOKEN_SECRET") {
		t.Errorf("error should explain how to set the secret: %v", err)
	}
}

func TestConsoleNotifier(t *testing.T) {
	var out bytes.Buffer
	n := Console(&out)
	n.Notify("Submitted successfully!", notify.Success)
	n.Notify("Error when registering: offline", notify.Error)

	got := out.String()
	for _, want := range []string{"Submitted successfully!", "Error when registering: offline"} {
		if !strings.Contains(got, want) {
			t.Errorf("console output missing %q:\n%s", want, got)
		}
	}
}

func TestCloseNil(t *testing.T) {
	var svc *Services
	if err := svc.Close(); err != nil {
		t.Errorf("Close on nil services = %v", err)
	}
}
