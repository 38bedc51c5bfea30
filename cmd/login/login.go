// SPDX-License-Identifier: Apache-2.0
package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/registration"
)

// ErrWrongPortal is returned when signing in through the other role's portal
var ErrWrongPortal = errors.New("wrong portal")

// PortalError names the role the account actually belongs to
type PortalError struct {
	Role registration.Role
}

func (e *PortalError) Error() string {
	return fmt.Sprintf("This account is registered as a %s!", e.Role.Title())
}

func (e *PortalError) Unwrap() error {
	return ErrWrongPortal
}

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var (
		email          string
		portal         string
		passwordSource string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check account credentials",
		Long: `Signs in with an email and password and greets the profile owner.

--role selects the portal (clinic or client). Signing in through the other
role's portal fails. The account must have verified its email first.`,
		Example: `  INTAKE_PASSWORD="secret" intake login --email desk@acme.example --role clinic`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var role registration.Role
			if portal != "" {
				r, err := registration.ParseRole(portal)
				if err != nil {
					return err
				}
				role = r
			}
			source, err := cmdutil.ParsePasswordSource(passwordSource)
			if err != nil {
				return err
			}

			svc, err := cmdutil.OpenServices(cmd.Context(), cmdutil.ServiceOptions{Logger: log.Default(), Out: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			defer svc.Close()

			password, err := cmdutil.GetPassword(source, "Password for "+email, false)
			if err != nil {
				return fmt.Errorf("password required: use %s env var or pipe via stdin: %w", cmdutil.EnvPassword, err)
			}

			message, err := Login(cmd.Context(), svc, email, password, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.CurrentTheme.SuccessMessage(message))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account")
	cmd.Flags().StringVar(&portal, "role", "", "Portal to sign in to: client or clinic (defaults to the account's role)")
	cmd.Flags().StringVar(&passwordSource, "password-source", "auto", "Password source: auto, env, stdin, tui")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// Login authenticates through portal and returns the greeting. An empty
// portal accepts either role.
func Login(ctx context.Context, svc *cmdutil.Services, email, password string, portal registration.Role) (string, error) {
	session, err := cmdutil.SignIn(ctx, svc.Accounts, email, password, "")
	if err != nil {
		return "", err
	}
	if portal != "" && portal != session.Role {
		log.Warn("Sign-in through the wrong portal", "email", session.Email, "role", session.Role, "portal", portal)
		return "", &PortalError{Role: session.Role}
	}

	record, err := registration.LoadRecord(ctx, svc.Store, session.Role, session.Email)
	if err != nil {
		return "", err
	}
	log.Info("Signed in", "email", session.Email, "role", session.Role)
	return fmt.Sprintf("Logged in as %s!", record.Name), nil
}
