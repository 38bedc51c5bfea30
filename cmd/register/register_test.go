// SPDX-License-Identifier: Apache-2.0
package register

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
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
	"github.com/Work-Fort/Intake/pkg/wizard"
)

func memoryServices(t *testing.T) (*cmdutil.Services, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	accounts := identity.NewAccounts(mem, identity.WithHashCost(bcrypt.MinCost))
	verifier, err := identity.NewVerifier("register-test-secret", "https://intake.example/verify", time.Hour, accounts)
	require.NoError(t, err)
	return &cmdutil.Services{
		Store:    mem,
		Accounts: accounts,
		Verifier: verifier,
		Mailer:   identity.NewOutboxMailer(mem, nil),
		Metrics:  metrics.New(),
	}, mem
}

func clientAnswers() registration.Answers {
	return registration.Answers{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "(902) 555-0100",
		Street:   "1 Main St",
		City:     "Halifax",
		Province: "NS",
	}
}

func TestSubmitClient(t *testing.T) {
	svc, mem := memoryServices(t)
	seed, err := clientAnswers().Snapshot(registration.ClientRegistration())
	require.NoError(t, err)

	rec := &notify.Recorder{}
	receipt, err := Submit(context.Background(), svc, registration.RoleClient, seed, "hunter22", rec)
	require.NoError(t, err)
	assert.Equal(t, "A verification link has been sent to ada@example.com", receipt.Message)
	assert.Equal(t, 1, rec.Count(notify.Success))

	record, err := registration.LoadRecord(context.Background(), mem, registration.RoleClient, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", record.Name)
	assert.Equal(t, 1, mem.Len(identity.OutboxCollection))
}

func TestSubmitClinicRequiresEquipment(t *testing.T) {
	svc, mem := memoryServices(t)
	seed, err := clientAnswers().Snapshot(registration.ClinicRegistration())
	require.NoError(t, err)

	_, err = Submit(context.Background(), svc, registration.RoleClinic, seed, "hunter22", &notify.Recorder{})
	require.Error(t, err)

	var incomplete *wizard.IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "What equipment are you on?", incomplete.Step)
	assert.Contains(t, err.Error(), "--answers")

	exists, err := mem.Exists(context.Background(), registration.RoleClinic.Collection(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubmitClinicWithEquipment(t *testing.T) {
	svc, _ := memoryServices(t)
	answers := clientAnswers()
	answers.Name = "Acme Vet"
	answers.Equipment = map[string][]string{"diagnostic": {"diagnostic4"}}
	seed, err := answers.Snapshot(registration.ClinicRegistration())
	require.NoError(t, err)

	_, err = Submit(context.Background(), svc, registration.RoleClinic, seed, "hunter22", nil)
	require.NoError(t, err)

	// The gateway was instrumented
	count := testutil.ToFloat64(svc.Metrics.Submissions.WithLabelValues("clinic-registration", metrics.OutcomeSuccess))
	assert.Equal(t, 1.0, count)
}

func TestSubmitDuplicateEmailFails(t *testing.T) {
	svc, _ := memoryServices(t)
	seed, err := clientAnswers().Snapshot(registration.ClientRegistration())
	require.NoError(t, err)

	_, err = Submit(context.Background(), svc, registration.RoleClient, seed, "hunter22", nil)
	require.NoError(t, err)

	rec := &notify.Recorder{}
	_, err = Submit(context.Background(), svc, registration.RoleClient, seed, "hunter22", rec)
	require.Error(t, err)
	assert.Equal(t, 1, rec.Count(notify.Error))
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Contains(t, last.Message, registration.MsgRegisterPrefix)
}

func TestSubmitRejectsEmptyPassword(t *testing.T) {
	svc, _ := memoryServices(t)
	seed, err := clientAnswers().Snapshot(registration.ClientRegistration())
	require.NoError(t, err)

	_, err = Submit(context.Background(), svc, registration.RoleClient, seed, "", nil)
	var incomplete *wizard.IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "Secure your account", incomplete.Step)
	assert.Contains(t, incomplete.Fields, registration.KeyPassword)
}

func TestRegisterCmdArgs(t *testing.T) {
	cmd := NewRegisterCmd()
	cmd.SetArgs([]string{"doctor"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	assert.Error(t, cmd.Execute())

	for _, name := range []string{"name", "email", "phone", "street", "city", "province", "equipment", "answers", "dry-run", "yes", "password-source"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestNewControllerSeedsAnswers(t *testing.T) {
	svc, _ := memoryServices(t)
	seed := form.NewSnapshot(map[string]form.Value{registration.KeyName: form.Text("Seeded")})
	ctrl, err := NewController(svc, registration.RoleClient, seed, nil)
	require.NoError(t, err)
	assert.Equal(t, "Seeded", ctrl.Snapshot().Text(registration.KeyName))
	assert.False(t, ctrl.Dirty())
}
