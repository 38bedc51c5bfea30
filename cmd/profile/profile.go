// SPDX-License-Identifier: Apache-2.0
package profile

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/metrics"
	"github.com/Work-Fort/Intake/pkg/notify"
	"github.com/Work-Fort/Intake/pkg/registration"
	"github.com/Work-Fort/Intake/pkg/ui"
	"github.com/Work-Fort/Intake/pkg/wizard"
)

// MsgNoChanges is the receipt for a profile submitted without edits
const MsgNoChanges = "No changes to save"

type accountFlags struct {
	email          string
	role           string
	passwordSource string
}

func (a *accountFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.email, "email", "", "Email address of the account")
	cmd.Flags().StringVar(&a.role, "role", "", "Expected role: client or clinic (defaults to the account's role)")
	cmd.Flags().StringVar(&a.passwordSource, "password-source", "auto", "Password source: auto, env, stdin, tui")
	_ = cmd.MarkFlagRequired("email")
}

// signIn opens the services and authenticates the account
func (a accountFlags) signIn(cmd *cobra.Command) (*cmdutil.Services, cmdutil.Session, error) {
	var want registration.Role
	if a.role != "" {
		role, err := registration.ParseRole(a.role)
		if err != nil {
			return nil, cmdutil.Session{}, err
		}
		want = role
	}
	source, err := cmdutil.ParsePasswordSource(a.passwordSource)
	if err != nil {
		return nil, cmdutil.Session{}, err
	}

	svc, err := cmdutil.OpenServices(cmd.Context(), cmdutil.ServiceOptions{Logger: log.Default(), Out: cmd.OutOrStdout()})
	if err != nil {
		return nil, cmdutil.Session{}, err
	}

	password, err := cmdutil.GetPassword(source, "Password for "+a.email, false)
	if err != nil {
		svc.Close()
		return nil, cmdutil.Session{}, fmt.Errorf("password required: use %s env var or pipe via stdin: %w", cmdutil.EnvPassword, err)
	}
	session, err := cmdutil.SignIn(cmd.Context(), svc.Accounts, a.email, password, want)
	if err != nil {
		svc.Close()
		return nil, cmdutil.Session{}, err
	}
	log.Debug("Signed in", "email", session.Email, "role", session.Role)
	return svc, session, nil
}

// NewProfileCmd creates the profile command with subcommands
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit a registered profile",
		Long: `View and edit the profile of a registered clinic or client.

Both subcommands sign in first; the account must have verified its email.`,
	}

	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newShowCmd())

	return cmd
}

func newEditCmd() *cobra.Command {
	var (
		account accountFlags
		answers cmdutil.AnswerFlags
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a profile with the wizard",
		Long: `Opens the profile wizard seeded with the stored record.

The email address identifies the record and cannot be changed. Clinics may
skip the equipment step to keep their current selection.

Non-interactive mode applies the field flags and/or --answers on top of
the stored record and saves only when something changed.`,
		Example: `  # Interactive
  intake profile edit --email desk@acme.example

  # Non-interactive
  INTAKE_PASSWORD="secret" intake profile edit --email desk@acme.example \
    --phone "902-555-0199" --equipment laboratory=laboratory2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, account, answers)
		},
	}

	account.bind(cmd)
	answers.Bind(cmd.Flags(), false)
	return cmd
}

func runEdit(cmd *cobra.Command, account accountFlags, flags cmdutil.AnswerFlags) error {
	resolved, err := flags.Resolve()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, session, err := account.signIn(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.ServeMetrics(ctx)

	overrides, err := resolved.Snapshot(registration.ProfileFlow(session.Role))
	if err != nil {
		return err
	}

	if cmdutil.IsInteractive() {
		return runInteractive(ctx, cmd.OutOrStdout(), svc, session, overrides)
	}

	_, err = Edit(ctx, svc, session, overrides, cmdutil.Console(cmd.OutOrStdout()))
	return err
}

// NewController builds the profile wizard for session, seeded with the
// stored record. Submitting without edits saves nothing.
func NewController(ctx context.Context, svc *cmdutil.Services, session cmdutil.Session, notifier notify.Notifier) (*wizard.Controller, error) {
	seed, err := registration.LoadProfile(ctx, svc.Store, session.Role, session.Email)
	if err != nil {
		return nil, err
	}

	flow := registration.ProfileFlow(session.Role)
	save := metrics.Instrument(svc.Metrics, flow.Name, registration.ProfileGateway(svc.Registration(), session.Role, session.Email))

	// baseline is the seeded model; the gateway compares the dispatched
	// snapshot against it, never the live model
	var baseline form.Snapshot
	gateway := wizard.GatewayFunc(func(ctx context.Context, s form.Snapshot) (wizard.Receipt, error) {
		if s.Equal(baseline) {
			return wizard.Receipt{Message: MsgNoChanges}, nil
		}
		return save.Submit(ctx, s)
	})

	ctrl, err := wizard.New(flow, wizard.Options{
		Gateway:  gateway,
		Notifier: notify.Multi{notify.Log{Logger: svc.Logger}, notifier},
		Seed:     &seed,
		Logger:   svc.Logger,
	})
	if err != nil {
		return nil, err
	}
	baseline = ctrl.Snapshot()
	return ctrl, nil
}

// Edit applies overrides to the stored profile and drives the wizard to
// completion
func Edit(ctx context.Context, svc *cmdutil.Services, session cmdutil.Session, overrides form.Snapshot, notifier notify.Notifier) (wizard.Receipt, error) {
	ctrl, err := NewController(ctx, svc, session, notifier)
	if err != nil {
		return wizard.Receipt{}, err
	}
	for _, key := range overrides.Keys() {
		v, _ := overrides.Get(key)
		if err := ctrl.Set(key, v); err != nil {
			return wizard.Receipt{}, err
		}
	}
	return ctrl.Drive(ctx)
}

func runInteractive(ctx context.Context, out io.Writer, svc *cmdutil.Services, session cmdutil.Session, overrides form.Snapshot) error {
	toasts := ui.NewToasts(0)
	ctrl, err := NewController(ctx, svc, session, toasts)
	if err != nil {
		return err
	}
	for _, key := range overrides.Keys() {
		v, _ := overrides.Get(key)
		if err := ctrl.Set(key, v); err != nil {
			return err
		}
	}

	model := ui.NewStepWizard(ctx, ctrl, toasts, "profile", session.Email)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	if err := model.Err(); err != nil {
		return fmt.Errorf("wizard aborted: %w", err)
	}

	theme := config.CurrentTheme
	receipt, ok := model.Receipt()
	if !ok {
		fmt.Fprintln(out, theme.WarningMessage("Profile edit cancelled"))
		return nil
	}
	fmt.Fprintln(out, theme.SuccessMessage(receipt.Message))
	return nil
}

func newShowCmd() *cobra.Command {
	var account accountFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, session, err := account.signIn(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			record, err := registration.LoadRecord(cmd.Context(), svc.Store, session.Role, session.Email)
			if err != nil {
				return err
			}
			cmdutil.PrintMarkdown(cmd.OutOrStdout(), RecordMarkdown(record))
			return nil
		},
	}

	account.bind(cmd)
	return cmd
}

// RecordMarkdown formats a record for glamour
func RecordMarkdown(r registration.Record) string {
	var md strings.Builder

	md.WriteString(fmt.Sprintf("# %s\n\n", r.Name))
	md.WriteString(fmt.Sprintf("*%s profile*\n\n", r.Role.Title()))

	md.WriteString("## Contact\n\n")
	md.WriteString(fmt.Sprintf("- **Email:** %s\n", r.Email))
	md.WriteString(fmt.Sprintf("- **Phone:** %s\n\n", r.Phone))

	md.WriteString("## Address\n\n")
	md.WriteString(fmt.Sprintf("%s  \n%s, %s\n\n", r.Street, r.City, r.Province))

	if r.Role == registration.RoleClinic {
		md.WriteString("## Equipment\n\n")
		groups := []struct {
			title string
			items []string
		}{
			{"Standard", r.StandardEquipment},
			{"Clinical", r.ClinicalEquipment},
			{"Diagnostic", r.DiagnosticEquipment},
			{"Laboratory", r.LaboratoryEquipment},
		}
		for _, g := range groups {
			items := "none"
			if len(g.items) > 0 {
				items = "`" + strings.Join(g.items, "`, `") + "`"
			}
			md.WriteString(fmt.Sprintf("- **%s:** %s\n", g.title, items))
		}
		md.WriteString("\n")
	}

	md.WriteString(fmt.Sprintf("Updated %s (schema %s)\n", r.UpdatedAt.Format("2006-01-02 15:04 MST"), r.SchemaVersion))
	return md.String()
}
