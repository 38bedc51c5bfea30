// SPDX-License-Identifier: Apache-2.0
package register

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/metrics"
	"github.com/Work-Fort/Intake/pkg/notify"
	"github.com/Work-Fort/Intake/pkg/registration"
	"github.com/Work-Fort/Intake/pkg/ui"
	"github.com/Work-Fort/Intake/pkg/wizard"
)

// Flags holds the CLI flags for non-interactive mode
type Flags struct {
	cmdutil.AnswerFlags
	PasswordSource string
	DryRun         bool
	Yes            bool
}

// NewRegisterCmd returns the cobra command for the register subcommand
func NewRegisterCmd() *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:       "register <clinic|client>",
		Short:     "Register a new clinic or client account",
		ValidArgs: []string{string(registration.RoleClinic), string(registration.RoleClient)},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Long: `Walks through the registration wizard for the chosen role.

Clinics answer four steps: clinic details, location, equipment and account.
Clients answer three: personal details, address and account.

Interactive mode (default when stdin is a terminal and use-tui is true):
  Launches a tabbed wizard. Enter moves on, ctrl+s skips optional steps,
  esc goes back.

Non-interactive mode:
  Answers come from flags and/or --answers. The password is read from the
  INTAKE_PASSWORD environment variable or from stdin (piped input).
  A verification link is sent to the registered email address.`,
		Example: `  # Interactive wizard (when stdin is a TTY)
  intake register clinic

  # Non-interactive (password via environment variable)
  INTAKE_PASSWORD="secret" intake register client \
    --name "Ada Lovelace" --email ada@example.com --phone "(902) 555-0100" \
    --street "1 Main St" --city Halifax --province NS

  # Clinic answers from a file, equipment from flags
  echo "secret" | intake register clinic --answers clinic.yaml \
    --equipment standard=standard1,standard4 --equipment clinical=clinical2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, args[0], flags)
		},
	}

	flags.Bind(cmd.Flags(), true)
	cmd.Flags().StringVar(&flags.PasswordSource, "password-source", "auto", "Password source: auto, env, stdin, tui")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Use an in-memory store and print mail instead of sending it")
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Submit without asking for confirmation")

	return cmd
}

func runRegister(cmd *cobra.Command, roleArg string, flags Flags) error {
	role, err := registration.ParseRole(roleArg)
	if err != nil {
		return err
	}

	answers, err := flags.Resolve()
	if err != nil {
		return err
	}
	flow := registration.RegistrationFlow(role)
	seed, err := answers.Snapshot(flow)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := cmdutil.OpenServices(ctx, cmdutil.ServiceOptions{
		DryRun: flags.DryRun,
		Logger: log.Default(),
		Out:    cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.ServeMetrics(ctx)

	if cmdutil.IsInteractive() {
		return runInteractive(ctx, cmd.OutOrStdout(), svc, role, seed)
	}

	source, err := cmdutil.ParsePasswordSource(flags.PasswordSource)
	if err != nil {
		return err
	}
	password, err := cmdutil.GetPassword(source, "Password", true)
	if err != nil {
		return fmt.Errorf("password required: use %s env var or pipe via stdin: %w", cmdutil.EnvPassword, err)
	}

	if !flags.Yes && term.IsTerminal(int(os.Stdin.Fd())) {
		ok, err := ui.Confirm("Submit "+flow.Name+"?", "Register "+seed.Text(registration.KeyEmail)+" as a "+role.Title()+".")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), config.CurrentTheme.WarningMessage("Registration cancelled"))
			return nil
		}
	}

	_, err = Submit(ctx, svc, role, seed, password, cmdutil.Console(cmd.OutOrStdout()))
	return err
}

// NewController builds the registration wizard for role, instrumented with
// the service metrics
func NewController(svc *cmdutil.Services, role registration.Role, seed form.Snapshot, notifier notify.Notifier) (*wizard.Controller, error) {
	flow := registration.RegistrationFlow(role)
	gateway := metrics.Instrument(svc.Metrics, flow.Name, registration.RegisterGateway(svc.Registration(), role))
	logger := svc.Logger
	if logger == nil {
		logger = log.Default()
	}
	completed := wizard.NavigatorFunc(func(s form.Snapshot) {
		logger.Info("Registration completed", "role", role, "email", s.Text(registration.KeyEmail), "next", "intake verify")
	})
	return wizard.New(flow, wizard.Options{
		Gateway:   gateway,
		Notifier:  notify.Multi{notify.Log{Logger: svc.Logger}, notifier},
		Navigator: completed,
		Seed:      &seed,
		Logger:    svc.Logger,
	})
}

// Submit drives the registration wizard with pre-filled answers. It stops
// with a *wizard.IncompleteError on the first step the answers cannot pass.
func Submit(ctx context.Context, svc *cmdutil.Services, role registration.Role, seed form.Snapshot, password string, notifier notify.Notifier) (wizard.Receipt, error) {
	ctrl, err := NewController(svc, role, seed, notifier)
	if err != nil {
		return wizard.Receipt{}, err
	}
	if err := ctrl.SetText(registration.KeyPassword, password); err != nil {
		return wizard.Receipt{}, err
	}
	if err := ctrl.SetText(registration.KeyConfirmPassword, password); err != nil {
		return wizard.Receipt{}, err
	}

	receipt, err := ctrl.Drive(ctx)
	var incomplete *wizard.IncompleteError
	if errors.As(err, &incomplete) {
		return receipt, fmt.Errorf("%w\n\nHint: supply the missing answers with flags or --answers", err)
	}
	return receipt, err
}

// runInteractive launches the Bubble Tea wizard
func runInteractive(ctx context.Context, out io.Writer, svc *cmdutil.Services, role registration.Role, seed form.Snapshot) error {
	toasts := ui.NewToasts(0)
	ctrl, err := NewController(svc, role, seed, toasts)
	if err != nil {
		return err
	}

	model := ui.NewStepWizard(ctx, ctrl, toasts, "register", role.Title())
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	if err := model.Err(); err != nil {
		return fmt.Errorf("wizard aborted: %w", err)
	}

	theme := config.CurrentTheme
	receipt, ok := model.Receipt()
	if !ok {
		fmt.Fprintln(out, theme.WarningMessage("Registration cancelled"))
		return nil
	}
	fmt.Fprintln(out, theme.SuccessMessage(receipt.Message))
	return nil
}
