// SPDX-License-Identifier: Apache-2.0
package profile

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/identity"
	"github.com/Work-Fort/Intake/pkg/metrics"
	"github.com/Work-Fort/Intake/pkg/notify"
	"github.com/Work-Fort/Intake/pkg/registration"
	"github.com/Work-Fort/Intake/pkg/store"
)

var clinic = cmdutil.Session{Email: "desk@acme.example", Role: registration.RoleClinic}

func seededServices(t *testing.T) (*cmdutil.Services, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	accounts := identity.NewAccounts(mem, identity.WithHashCost(bcrypt.MinCost))
	verifier, err := identity.NewVerifier("profile-test-secret", "https://intake.example/verify", time.Hour, accounts)
	require.NoError(t, err)

	record := registration.Record{
		ID:                "rec-1",
		Role:              registration.RoleClinic,
		Name:              "Acme Vet",
		Email:             clinic.Email,
		Phone:             "902-555-0100",
		Street:            "1 Main St",
		City:              "Halifax",
		Province:          "NS",
		StandardEquipment: []string{"standard1"},
		SchemaVersion:     registration.SchemaVersion,
		CreatedAt:         time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, mem.Put(context.Background(), registration.RoleClinic.Collection(), clinic.Email, record))

	return &cmdutil.Services{
		Store:    mem,
		Accounts: accounts,
		Verifier: verifier,
		Mailer:   identity.NewOutboxMailer(mem, nil),
		Metrics:  metrics.New(),
	}, mem
}

func TestEditSavesChanges(t *testing.T) {
	svc, mem := seededServices(t)
	ctx := context.Background()

	overrides := form.NewSnapshot(map[string]form.Value{
		registration.KeyCity:                form.Text("Dartmouth"),
		registration.KeyLaboratoryEquipment: form.List("laboratory2"),
	})
	rec := &notify.Recorder{}
	receipt, err := Edit(ctx, svc, clinic, overrides, rec)
	require.NoError(t, err)
	assert.Equal(t, registration.MsgChangesSaved, receipt.Message)
	assert.Equal(t, 1, rec.Count(notify.Success))

	record, err := registration.LoadRecord(ctx, mem, registration.RoleClinic, clinic.Email)
	require.NoError(t, err)
	assert.Equal(t, "Dartmouth", record.City)
	assert.Equal(t, "Acme Vet", record.Name)
	assert.Equal(t, []string{"standard1"}, record.StandardEquipment)
	assert.Equal(t, []string{"laboratory2"}, record.LaboratoryEquipment)
	assert.Equal(t, "rec-1", record.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Metrics.Submissions.WithLabelValues("clinic-profile", metrics.OutcomeSuccess)))
}

func TestEditWithoutChangesSavesNothing(t *testing.T) {
	svc, mem := seededServices(t)
	ctx := context.Background()

	overrides := form.NewSnapshot(map[string]form.Value{
		registration.KeyCity: form.Text("Halifax"),
	})
	receipt, err := Edit(ctx, svc, clinic, overrides, nil)
	require.NoError(t, err)
	assert.Equal(t, MsgNoChanges, receipt.Message)

	record, err := registration.LoadRecord(ctx, mem, registration.RoleClinic, clinic.Email)
	require.NoError(t, err)
	assert.True(t, record.UpdatedAt.IsZero(), "record was rewritten")
	assert.Equal(t, 0.0, testutil.ToFloat64(svc.Metrics.Submissions.WithLabelValues("clinic-profile", metrics.OutcomeSuccess)))
}

func TestLateEditsDoNotReachDispatchedSave(t *testing.T) {
	svc, mem := seededServices(t)
	ctx := context.Background()

	ctrl, err := NewController(ctx, svc, clinic, nil)
	require.NoError(t, err)
	require.NoError(t, ctrl.SetText(registration.KeyCity, "Dartmouth"))
	for !ctrl.IsLast() {
		_, err := ctrl.Perform(ctrl.DefaultAction())
		require.NoError(t, err)
	}
	sub, err := ctrl.Advance()
	require.NoError(t, err)
	require.NotNil(t, sub)

	// Reverting the live model after dispatch still saves the edit
	require.NoError(t, ctrl.SetText(registration.KeyCity, "Halifax"))
	assert.False(t, ctrl.Dirty())

	receipt, err := ctrl.Complete(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, registration.MsgChangesSaved, receipt.Message)

	record, err := registration.LoadRecord(ctx, mem, registration.RoleClinic, clinic.Email)
	require.NoError(t, err)
	assert.Equal(t, "Dartmouth", record.City)
}

func TestEditRejectsEmailChange(t *testing.T) {
	svc, _ := seededServices(t)
	overrides := form.NewSnapshot(map[string]form.Value{
		registration.KeyEmail: form.Text("new@acme.example"),
	})
	_, err := Edit(context.Background(), svc, clinic, overrides, nil)
	assert.Error(t, err)
}

func TestEditMissingProfile(t *testing.T) {
	svc, _ := seededServices(t)
	nobody := cmdutil.Session{Email: "nobody@example.com", Role: registration.RoleClient}
	_, err := Edit(context.Background(), svc, nobody, form.NewSnapshot(nil), nil)
	assert.ErrorIs(t, err, registration.ErrProfileNotFound)
}

func TestRecordMarkdown(t *testing.T) {
	md := RecordMarkdown(registration.Record{
		Role:              registration.RoleClinic,
		Name:              "Acme Vet",
		Email:             "desk@acme.example",
		City:              "Halifax",
		Province:          "NS",
		ClinicalEquipment: []string{"clinical1", "clinical5"},
		SchemaVersion:     registration.SchemaVersion,
	})

	assert.Contains(t, md, "# Acme Vet")
	assert.Contains(t, md, "*Clinic profile*")
	assert.Contains(t, md, "- **Clinical:** `clinical1`, `clinical5`")
	assert.Contains(t, md, "- **Standard:** none")

	client := RecordMarkdown(registration.Record{Role: registration.RoleClient, Name: "Ada"})
	assert.NotContains(t, client, "## Equipment")
}

func TestProfileCmdFlags(t *testing.T) {
	cmd := NewProfileCmd()
	for _, name := range []string{"edit", "show"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		email := sub.Flags().Lookup("email")
		require.NotNil(t, email, name)
		assert.Equal(t, []string{"true"}, email.Annotations[cobra.BashCompOneRequiredFlag], name)
	}

	edit, _, err := cmd.Find([]string{"edit"})
	require.NoError(t, err)
	assert.NotNil(t, edit.Flags().Lookup("equipment"))
	assert.NotNil(t, edit.Flags().Lookup("answers"))
}
