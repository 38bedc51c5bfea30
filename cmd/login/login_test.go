// SPDX-License-Identifier: Apache-2.0
package login

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
	"github.com/Work-Fort/Intake/pkg/identity"
	"github.com/Work-Fort/Intake/pkg/registration"
	"github.com/Work-Fort/Intake/pkg/store"
)

func registered(t *testing.T, verified bool) *cmdutil.Services {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	accounts := identity.NewAccounts(mem, identity.WithHashCost(bcrypt.MinCost))
	verifier, err := identity.NewVerifier("login-test-secret", "https://intake.example/verify", time.Hour, accounts)
	require.NoError(t, err)

	_, err = accounts.Create(ctx, "desk@acme.example", "hunter22", string(registration.RoleClinic))
	require.NoError(t, err)
	if verified {
		_, err = accounts.MarkVerified(ctx, "desk@acme.example")
		require.NoError(t, err)
	}
	record := registration.Record{Role: registration.RoleClinic, Name: "Acme Vet", Email: "desk@acme.example", SchemaVersion: registration.SchemaVersion}
	require.NoError(t, mem.Put(ctx, registration.RoleClinic.Collection(), record.Email, record))

	return &cmdutil.Services{Store: mem, Accounts: accounts, Verifier: verifier}
}

func TestLogin(t *testing.T) {
	svc := registered(t, true)
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
		portal   registration.Role
		want     string
		wantErr  error
	}{
		{name: "clinic portal", password: "hunter22", portal: registration.RoleClinic, want: "Logged in as Acme Vet!"},
		{name: "any portal", password: "hunter22", want: "Logged in as Acme Vet!"},
		{name: "client portal", password: "hunter22", portal: registration.RoleClient, wantErr: ErrWrongPortal},
		{name: "bad password", password: "nope", portal: registration.RoleClinic, wantErr: identity.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Login(ctx, svc, "desk@acme.example", tt.password, tt.portal)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoginWrongPortalMessage(t *testing.T) {
	svc := registered(t, true)
	_, err := Login(context.Background(), svc, "desk@acme.example", "hunter22", registration.RoleClient)
	assert.EqualError(t, err, "This account is registered as a Clinic!")
}

func TestLoginUnverified(t *testing.T) {
	svc := registered(t, false)
	_, err := Login(context.Background(), svc, "desk@acme.example", "hunter22", "")
	assert.ErrorIs(t, err, identity.ErrNotVerified)
	assert.Contains(t, err.Error(), "intake verify")
}
