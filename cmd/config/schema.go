// SPDX-License-Identifier: Apache-2.0
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/pkg/config"
)

func newSchemaCmd() *cobra.Command {
	var (
		outputFile string
		scopeFlag  string
		check      bool
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export or check the configuration schema",
		Long: `Export the configuration registry as JSON Schema (Draft 2020-12), or
check the existing config files against it.

--scope repo drops the keys that may not be committed (token secret,
Redis URL) and narrows store.backend to the persistent backends.

--check validates ./intake.yaml and the user config the same way intake
does at startup, and fails on the first problem in each file.`,
		Example: `  intake config schema --scope repo --output intake.schema.json
  intake config schema --check
  intake config schema --check --scope user`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scopes := []config.ConfigScope{config.ScopeRepo, config.ScopeUser}
			var filter *config.ConfigScope
			if scopeFlag != "" {
				s, err := config.ParseScope(scopeFlag)
				if err != nil {
					return err
				}
				filter = &s
				scopes = []config.ConfigScope{s}
			}

			if check {
				return checkFiles(cmd.OutOrStdout(), scopes)
			}

			schema, err := config.GenerateJSONSchemaForScope(filter)
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			if outputFile == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(schema))
				return nil
			}
			if err := os.WriteFile(outputFile, schema, 0644); err != nil {
				return fmt.Errorf("failed to write schema to file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.CurrentTheme.SuccessMessage("Schema written to "+outputFile))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write schema to file instead of stdout")
	cmd.Flags().StringVar(&scopeFlag, "scope", "", "Limit to one scope: user or repo (default: both)")
	cmd.Flags().BoolVar(&check, "check", false, "Validate the existing config files instead of printing the schema")
	cmd.MarkFlagsMutuallyExclusive("check", "output")
	_ = cmd.RegisterFlagCompletionFunc("scope", cobra.FixedCompletions([]string{"user", "repo"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// errInvalidConfig is returned by --check after every file has been reported
var errInvalidConfig = errors.New("configuration is invalid")

func checkFiles(out io.Writer, scopes []config.ConfigScope) error {
	theme := config.CurrentTheme
	invalid := false
	for _, scope := range scopes {
		path := config.DisplayConfigPath(scope)
		if !config.ConfigFileExists(scope) {
			fmt.Fprintln(out, theme.SubtleStyle().Render("- "+path+": not present"))
			continue
		}
		if err := config.CheckConfigFile(scope); err != nil {
			invalid = true
			fmt.Fprintln(out, theme.ErrorIndicator()+" "+path)
			fmt.Fprintln(out, theme.ErrorMessage(err.Error()))
			continue
		}
		fmt.Fprintln(out, theme.CompleteIndicator()+" "+path)
	}
	if invalid {
		return errInvalidConfig
	}
	return nil
}
