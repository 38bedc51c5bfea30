// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
	configCmd "github.com/Work-Fort/Intake/cmd/config"
	initCmd "github.com/Work-Fort/Intake/cmd/init"
	"github.com/Work-Fort/Intake/cmd/login"
	"github.com/Work-Fort/Intake/cmd/profile"
	"github.com/Work-Fort/Intake/cmd/register"
	"github.com/Work-Fort/Intake/cmd/verify"
	"github.com/Work-Fort/Intake/cmd/version"
	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/store"
)

var (
	// Version is set at build time via ldflags
	// -ldflags "-X github.com/Work-Fort/Intake/cmd.Version=x.y.z"
	Version string

	logLevel     string
	useTUI       bool
	storeBackend string
	metricsAddr  string
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Clinic and client registration wizard",
	Long: `Intake - clinic and client registration wizard

Registers clinics and clients through a multi-step wizard, verifies their
email addresses and lets them edit their profiles afterwards. Records live
in a NATS JetStream key-value store (embedded by default) or in Redis.
Implements XDG Base Directory specification for organized file storage.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize directories before any command runs
		if err := config.InitDirs(); err != nil {
			return err
		}

		// Load config files now that directories exist
		if err := config.LoadConfig(); err != nil {
			return err
		}

		// Update flag values from Viper (respects config file and env vars)
		useTUI = config.GetUseTUI()
		logLevel = config.GetLogLevel()

		return setupLogging(logLevel)
	},
}

// setupLogging sends the default logger to the JSON log file
func setupLogging(level string) error {
	if level == "disabled" {
		log.SetOutput(io.Discard)
		return nil
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}

	// Always log to file in JSON format
	f, err := os.OpenFile(config.GlobalPaths.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetDefault(log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02T15:04:05.000Z07:00",
		Level:           parsed,
		ReportCaller:    true,
		Formatter:       log.JSONFormatter,
	}))
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Print error with styling
		theme := config.CurrentTheme
		errorStyle := theme.ErrorStyle()
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), err.Error())
		os.Exit(1)
	}
}

func init() {
	// Configure logging - will be redirected to file in PersistentPreRunE
	log.SetReportTimestamp(false)
	log.SetLevel(log.InfoLevel)

	// Initialize Viper configuration
	config.InitViper()

	// Add global flags
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level: disabled, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&useTUI, "use-tui", true, "Enable terminal UI mode")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "nats", "Document store: "+strings.Join(store.Backends(), ", "))
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address (e.g. :9090)")

	// Bind flags to Viper for config file and environment variable support
	config.BindFlags(rootCmd.PersistentFlags())

	// Add subcommands using factory functions
	rootCmd.AddCommand(configCmd.NewConfigCmd())
	rootCmd.AddCommand(initCmd.NewInitCmd())
	rootCmd.AddCommand(login.NewLoginCmd())
	rootCmd.AddCommand(profile.NewProfileCmd())
	rootCmd.AddCommand(register.NewRegisterCmd())
	rootCmd.AddCommand(verify.NewVerifyCmd())
	rootCmd.AddCommand(version.NewVersionCmd(Version))

	// Set custom help, usage, and error functions
	rootCmd.SetHelpFunc(styledHelpFunc)
	rootCmd.SetUsageFunc(styledUsageFunc)
	rootCmd.SilenceUsage = true  // Don't show usage on errors
	rootCmd.SilenceErrors = true // We'll handle error printing ourselves

	// Disable default completion and provide custom one (Linux only - no powershell)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	initCompletionCmd()
}

// completionShells lists the supported shells; PowerShell is left out
var completionShells = []struct {
	name    string
	install string
	gen     func(root *cobra.Command, w io.Writer, withDesc bool) error
}{
	{
		name: "bash",
		install: `This script depends on the 'bash-completion' package.

To load completions in your current shell session:

	source <(%[1]s completion bash)

To load completions for every new session, execute once:

	%[1]s completion bash > /etc/bash_completion.d/%[1]s`,
		gen: func(root *cobra.Command, w io.Writer, withDesc bool) error {
			return root.GenBashCompletionV2(w, withDesc)
		},
	},
	{
		name: "zsh",
		install: `If shell completion is not already enabled, execute once:

	echo "autoload -U compinit; compinit" >> ~/.zshrc

To load completions for every new session, execute once:

	%[1]s completion zsh > "${fpath[1]}/_%[1]s"`,
		gen: func(root *cobra.Command, w io.Writer, withDesc bool) error {
			if withDesc {
				return root.GenZshCompletion(w)
			}
			return root.GenZshCompletionNoDesc(w)
		},
	},
	{
		name: "fish",
		install: `To load completions in your current shell session:

	%[1]s completion fish | source

To load completions for every new session, execute once:

	%[1]s completion fish > ~/.config/fish/completions/%[1]s.fish`,
		gen: func(root *cobra.Command, w io.Writer, withDesc bool) error {
			return root.GenFishCompletion(w, withDesc)
		},
	},
}

// initCompletionCmd replaces cobra's default completion command
func initCompletionCmd() {
	completionCmd := &cobra.Command{
		Use:               "completion",
		Short:             "Generate the autocompletion script for the specified shell",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	for _, shell := range completionShells {
		var noDesc bool
		sub := &cobra.Command{
			Use:   shell.name,
			Short: fmt.Sprintf("Generate the autocompletion script for %s", shell.name),
			Long: fmt.Sprintf("Generate the autocompletion script for the %s shell.\n\n", shell.name) +
				fmt.Sprintf(shell.install, rootCmd.Name()) +
				"\n\nYou will need to start a new shell for this setup to take effect.",
			Args:                  cobra.NoArgs,
			DisableFlagsInUseLine: true,
			ValidArgsFunction:     cobra.NoFileCompletions,
			RunE: func(cmd *cobra.Command, args []string) error {
				return shell.gen(cmd.Root(), cmd.OutOrStdout(), !noDesc)
			},
		}
		sub.Flags().BoolVar(&noDesc, "no-descriptions", false, "disable completion descriptions")
		completionCmd.AddCommand(sub)
	}

	rootCmd.AddCommand(completionCmd)
}

// styledHelpFunc renders help output as markdown through glamour
func styledHelpFunc(cmd *cobra.Command, args []string) {
	cmdutil.PrintMarkdown(cmd.OutOrStdout(), cmdutil.HelpMarkdown(cmd))
}

// styledUsageFunc renders usage output as markdown through glamour
func styledUsageFunc(cmd *cobra.Command) error {
	cmdutil.PrintMarkdown(cmd.OutOrStderr(), cmdutil.UsageMarkdown(cmd))
	return nil
}

// GetRootCommand returns the root command for external use (e.g., tests)
func GetRootCommand() *cobra.Command {
	return rootCmd
}
