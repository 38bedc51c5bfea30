// SPDX-License-Identifier: Apache-2.0
package verify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/identity"
)

// ErrAlreadyVerified is returned when resending a link to a verified account
var ErrAlreadyVerified = errors.New("email address is already verified")

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var resend string

	cmd := &cobra.Command{
		Use:   "verify [token|link]",
		Short: "Complete email verification",
		Long: `Redeems the token from a verification email. The full link may be
passed instead of the bare token.

--resend sends a fresh link to an account that has not verified yet.`,
		Example: `  intake verify eyJhbGciOiJIUzI1NiIs...
  intake verify "http://localhost:3000/auth/verify?token=eyJhbGciOiJIUzI1NiIs..."
  intake verify --resend desk@acme.example`,
		Args: func(cmd *cobra.Command, args []string) error {
			if resend != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cmdutil.OpenServices(cmd.Context(), cmdutil.ServiceOptions{Logger: log.Default(), Out: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			defer svc.Close()

			theme := config.CurrentTheme
			if resend != "" {
				if err := Resend(cmd.Context(), svc, resend); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessMessage(
					fmt.Sprintf("A verification link has been sent to %s", identity.NormalizeEmail(resend))))
				return nil
			}

			account, err := Verify(cmd.Context(), svc.Verifier, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessMessage(
				fmt.Sprintf("Email verified for %s. You can now log in.", account.Email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&resend, "resend", "", "Send a new verification link to this email")
	return cmd
}

// TokenFromArg accepts a bare token or a verification link
func TokenFromArg(arg string) string {
	arg = strings.TrimSpace(arg)
	if !strings.Contains(arg, "://") {
		return arg
	}
	u, err := url.Parse(arg)
	if err != nil {
		return arg
	}
	if token := u.Query().Get("token"); token != "" {
		return token
	}
	return arg
}

// Verify redeems a token or link
func Verify(ctx context.Context, verifier *identity.Verifier, arg string) (identity.Account, error) {
	account, err := verifier.Verify(ctx, TokenFromArg(arg))
	switch {
	case errors.Is(err, identity.ErrTokenExpired):
		return identity.Account{}, fmt.Errorf("%w\n\nHint: request a new link:\n  intake verify --resend <email>", err)
	case err != nil:
		return identity.Account{}, err
	}
	log.Info("Email verified", "email", account.Email)
	return account, nil
}

// Resend mails a fresh verification link to an unverified account
func Resend(ctx context.Context, svc *cmdutil.Services, email string) error {
	account, err := svc.Accounts.Lookup(ctx, email)
	if err != nil {
		return err
	}
	if account.Verified {
		return ErrAlreadyVerified
	}
	link, err := svc.Verifier.Link(account.Email)
	if err != nil {
		return err
	}
	if err := svc.Mailer.Send(ctx, identity.VerificationMessage(account.Email, link)); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	log.Info("Verification link resent", "email", account.Email)
	return nil
}
