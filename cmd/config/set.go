// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/store"
)

func newSetCmd() *cobra.Command {
	var opt scopeOption

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a registered key in repo config, or in user config with --global.

The value is checked against the key's type before anything is written:
store.backend must name a store backend (memory is refused in repo
config), durations use Go syntax (24h, 90m), identity.hash-cost is a bcrypt
cost between 4 and 31. Booleans accept true/false, yes/no, on/off.`,
		Args: cobra.ExactArgs(2),
		Example: `  intake config set store.backend redis
  intake config set identity.hash-cost 12
  intake config set identity.token-ttl 48h
  intake config set --global identity.token-secret "$(openssl rand -hex 32)"
  intake config set --global use-tui off`,
		ValidArgsFunction: completeSetArgs(&opt),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd.OutOrStdout(), args[0], args[1], opt.scope())
		},
	}

	opt.bind(cmd)
	return cmd
}

func runSet(out io.Writer, key, value string, scope config.ConfigScope) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if key == "store.backend" {
		if err := checkBackend(value, scope); err != nil {
			return err
		}
	}
	if err := config.SetConfigValue(key, value, scope); err != nil {
		return err
	}

	theme := config.CurrentTheme
	fmt.Fprintln(out, theme.SuccessMessage(fmt.Sprintf("Set %s = %v", key, config.DisplayValue(key, value))))
	fmt.Fprintln(out, theme.SubtleStyle().Render("  in "+config.DisplayConfigPath(scope)))

	for _, hint := range setHints(key, value) {
		fmt.Fprintln(out, theme.InfoMessage(hint))
	}
	return nil
}

// checkBackend names the valid backends for scope, which the generic enum
// error does not explain
func checkBackend(value string, scope config.ConfigScope) error {
	allowed := config.AllowedValues("store.backend", scope)
	if slices.Contains(allowed, value) {
		return nil
	}
	if slices.Contains(store.Backends(), value) {
		return fmt.Errorf("store backend %q is not allowed in %s config (use one of: %s)\n\n"+
			"Hint: the memory store loses every registration on exit; use it with --dry-run or --global",
			value, scope, strings.Join(allowed, ", "))
	}
	return fmt.Errorf("unknown store backend %q (use one of: %s)", value, strings.Join(allowed, ", "))
}

// setHints names the settings a new value depends on
func setHints(key, value string) []string {
	switch {
	case key == "store.backend" && value == store.BackendRedis && config.GetRedisURL() == "":
		return []string{"Redis needs a URL: intake config set --global store.redis.url redis://host:6379/0"}
	case key == "store.backend" && value == store.BackendNATS && config.GetNATSURL() == "":
		return []string{"No store.nats.url set: an embedded NATS server stores data under " + config.GetNATSDir()}
	case key == "identity.hash-cost":
		return []string{"Existing passwords keep their cost until the account is re-registered"}
	}
	return nil
}

func completeSetArgs(opt *scopeOption) cobra.CompletionFunc {
	keys := completeKeys(1)
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return keys(cmd, args, toComplete)
		}
		if len(args) == 1 {
			return config.AllowedValues(args[0], opt.scope()), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}
