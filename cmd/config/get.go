// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/pkg/config"
)

func newGetCmd() *cobra.Command {
	var valueOnly bool

	cmd := &cobra.Command{
		Use:   "get <key>...",
		Short: "Show effective configuration values",
		Long: `Show the effective value of one or more keys and the layer it came from:
an INTAKE_* variable, ./intake.yaml, the user config, or the default.

Secrets are masked. --value prints only the values, one per line, for
scripts.`,
		Args: cobra.MinimumNArgs(1),
		Example: `  intake config get store.backend
  # store.backend = redis (from ./intake.yaml)

  intake config get identity.token-secret identity.token-ttl
  # identity.token-secret = ******************************** (from ~/.config/intake/config.yaml)
  # identity.token-ttl = 24h (default)

  BACKEND=$(intake config get --value store.backend)`,
		ValidArgsFunction: completeKeys(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range args {
				if err := checkKey(key); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, key := range args {
				cv, err := config.GetConfigValue(key)
				if err != nil {
					return err
				}
				value := config.DisplayValue(cv.Key, cv.Value)
				if valueOnly {
					fmt.Fprintln(out, value)
					continue
				}
				fmt.Fprintf(out, "%s = %v (%s)\n", cv.Key, value, cv.Source)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&valueOnly, "value", false, "Print only the values")
	return cmd
}
