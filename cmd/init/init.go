// SPDX-License-Identifier: Apache-2.0
package init

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
	"github.com/Work-Fort/Intake/pkg/config"
	initpkg "github.com/Work-Fort/Intake/pkg/init"
)

// InitFlags holds the CLI flags for non-interactive mode
type InitFlags struct {
	Backend        string
	NATSURL        string
	StoreDir       string
	VerifyURL      string
	HashCost       int
	TokenTTL       string
	GenerateSecret bool
}

// Settings converts the flags into deployment settings
func (f InitFlags) Settings() initpkg.InitSettings {
	return initpkg.InitSettings{
		StoreBackend: f.Backend,
		NATSURL:      f.NATSURL,
		StoreDir:     f.StoreDir,
		VerifyURL:    f.VerifyURL,
		HashCost:     f.HashCost,
		TokenTTL:     f.TokenTTL,
	}
}

// NewInitCmd returns the cobra command for the init subcommand
func NewInitCmd() *cobra.Command {
	defaults := initpkg.DefaultSettings()
	flags := InitFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize an Intake deployment in the current directory",
		Long: `Sets up the current directory as an Intake deployment.

Creates:
  - intake.yaml (repo configuration)
  - .intake/repo.schema.json (editor validation for intake.yaml)
  - .gitignore entries for local store data and logs

Secrets are never written to intake.yaml. With --generate-secret a random
token secret is stored in the user config when none is set yet.

Interactive mode (default when stdin is a terminal and use-tui is true):
  Asks for each setting, pre-filled with the flag values.

Non-interactive mode:
  Uses the flag values as given.`,
		Example: `  # Interactive
  intake init

  # Redis-backed deployment with a fresh token secret
  intake init --backend redis --verify-url https://vets.example/auth/verify --generate-secret

  # Embedded NATS keeping its data inside the deployment
  intake init --store-dir .intake/store`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmdutil.IsInteractive() {
				if err := askSettings(&flags); err != nil {
					return err
				}
			}
			return runInit(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.Backend, "backend", defaults.StoreBackend, "Document store backend (nats, redis)")
	cmd.Flags().StringVar(&flags.NATSURL, "nats-url", "", "NATS server URL; empty starts an embedded server")
	cmd.Flags().StringVar(&flags.StoreDir, "store-dir", "", "JetStream directory relative to the deployment; empty uses the user data dir")
	cmd.Flags().StringVar(&flags.VerifyURL, "verify-url", defaults.VerifyURL, "Page that verification links point at")
	cmd.Flags().IntVar(&flags.HashCost, "hash-cost", defaults.HashCost, "bcrypt cost for stored passwords")
	cmd.Flags().StringVar(&flags.TokenTTL, "token-ttl", defaults.TokenTTL, "Lifetime of verification links")
	cmd.Flags().BoolVar(&flags.GenerateSecret, "generate-secret", false, "Store a random token secret in the user config if none is set")

	_ = cmd.RegisterFlagCompletionFunc("backend", cobra.FixedCompletions(config.AllowedValues("store.backend", config.ScopeRepo), cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runInit generates the deployment files and prints what was created
func runInit(out io.Writer, flags InitFlags) error {
	if _, err := os.Stat(".git"); os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "warning: not a git repository - consider running 'git init' first")
	}

	files, err := initpkg.GenerateRepoFiles(flags.Settings())
	if err != nil {
		return err
	}

	theme := config.CurrentTheme
	fmt.Fprintln(out, theme.SuccessMessage("Deployment initialized successfully"))
	fmt.Fprintln(out)
	for _, file := range files {
		fmt.Fprintln(out, theme.CompleteIndicator()+" "+file)
	}

	secretSet := config.GetTokenSecret() != ""
	if flags.GenerateSecret && !secretSet {
		secret, err := initpkg.GenerateSecret()
		if err != nil {
			return err
		}
		if err := config.SetConfigValue("identity.token-secret", secret, config.ScopeUser); err != nil {
			return fmt.Errorf("failed to store token secret: %w", err)
		}
		log.Info("Generated token secret", "scope", "user")
		fmt.Fprintln(out, theme.CompleteIndicator()+" identity.token-secret (user config)")
		secretSet = true
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	step := 1
	if !secretSet {
		fmt.Fprintf(out, "  %d. Set a token secret: intake config set --global identity.token-secret <secret>\n", step)
		step++
	}
	if flags.Backend == "redis" {
		fmt.Fprintf(out, "  %d. Point at Redis: intake config set --global store.redis.url redis://host:6379/0\n", step)
		step++
	}
	fmt.Fprintf(out, "  %d. Register an account: intake register clinic\n", step)

	return nil
}

// askSettings lets the user review every setting before files are written
func askSettings(flags *InitFlags) error {
	hashCost := strconv.Itoa(flags.HashCost)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Document store").
				Options(
					huh.NewOption("NATS JetStream", "nats"),
					huh.NewOption("Redis", "redis"),
				).
				Value(&flags.Backend),
			huh.NewInput().
				Title("NATS server URL").
				Description("Leave empty to start an embedded server").
				Value(&flags.NATSURL).
				Validate(validator("store.nats.url")),
			huh.NewInput().
				Title("Store directory").
				Description("Relative to this directory; empty uses the user data dir").
				Value(&flags.StoreDir).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					return validator("store.nats.dir")(s)
				}),
		).Title("Storage"),
		huh.NewGroup(
			huh.NewInput().
				Title("Verification page").
				Value(&flags.VerifyURL).
				Validate(validator("identity.verify-url")),
			huh.NewInput().
				Title("Password hash cost").
				Value(&hashCost).
				Validate(func(s string) error {
					_, err := initpkg.ParseHashCost(s)
					return err
				}),
			huh.NewInput().
				Title("Verification link lifetime").
				Value(&flags.TokenTTL).
				Validate(validator("identity.token-ttl")),
			huh.NewConfirm().
				Title("Generate a token secret?").
				Description("Stored in the user config, never in intake.yaml").
				Value(&flags.GenerateSecret),
		).Title("Identity"),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("init cancelled")
		}
		return err
	}

	cost, err := initpkg.ParseHashCost(hashCost)
	if err != nil {
		return err
	}
	flags.HashCost = cost
	return nil
}

func validator(key string) func(string) error {
	return func(s string) error {
		return config.ValidateValue(key, s, config.ScopeRepo)
	}
}
