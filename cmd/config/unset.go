// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/pkg/config"
)

func newUnsetCmd() *cobra.Command {
	var opt scopeOption

	cmd := &cobra.Command{
		Use:   "unset <key|section>",
		Short: "Remove a configuration value",
		Long: `Remove a key from repo config, or from user config with --global.

A section name (store, store.nats, identity) removes every key under it.
Environment variables, the other config file and defaults still apply
afterwards; the command lists the defaults of the removed keys.`,
		Args: cobra.ExactArgs(1),
		Example: `  intake config unset identity.hash-cost
  intake config unset --global identity.token-secret
  intake config unset store.nats`,
		ValidArgsFunction: completeKeys(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnset(cmd.OutOrStdout(), args[0], opt.scope())
		},
	}

	opt.bind(cmd)
	return cmd
}

func runUnset(out io.Writer, key string, scope config.ConfigScope) error {
	keys := config.MatchKeys(key)
	if len(keys) == 0 {
		return checkKey(key)
	}
	if err := config.UnsetConfigValue(key, scope); err != nil {
		return err
	}

	theme := config.CurrentTheme
	fmt.Fprintln(out, theme.SuccessMessage(fmt.Sprintf("Removed %s from %s", key, config.DisplayConfigPath(scope))))
	for _, k := range keys {
		value := fmt.Sprint(config.DisplayValue(k, config.GetKeyDefinition(k).Default))
		if value == "" {
			value = "(empty)"
		}
		fmt.Fprintln(out, theme.SubtleStyle().Render(fmt.Sprintf("  %s: default %s unless another layer sets it", k, value)))
	}
	return nil
}
