// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/Work-Fort/Intake/pkg/identity"
	"github.com/Work-Fort/Intake/pkg/registration"
)

// ErrRoleMismatch is returned when --role disagrees with the account
var ErrRoleMismatch = errors.New("account is registered with a different role")

// Session is a signed-in account
type Session struct {
	Email string
	Role  registration.Role
}

// SignIn checks credentials and returns the account's session. want may be
// empty; otherwise it must match the role the account registered with.
func SignIn(ctx context.Context, accounts *identity.Accounts, email, password string, want registration.Role) (Session, error) {
	account, err := accounts.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrNotVerified) {
			return Session{}, fmt.Errorf("%w\n\nHint: open the link in the verification email, or run:\n  intake verify <token>", err)
		}
		return Session{}, err
	}

	role, err := registration.ParseRole(account.Role)
	if err != nil {
		return Session{}, fmt.Errorf("account %s: %w", account.Email, err)
	}
	if want != "" && want != role {
		return Session{}, fmt.Errorf("%w: %s is a %s account", ErrRoleMismatch, account.Email, role.Title())
	}
	return Session{Email: account.Email, Role: role}, nil
}
