// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/cmd/cmdutil"
	"github.com/Work-Fort/Intake/pkg/config"
)

// keyGroup is one registry section in list output
type keyGroup struct {
	name   string
	values []config.ConfigValue
}

// groupValues buckets values by registry section. general comes first,
// the rest follow alphabetically.
func groupValues(values []config.ConfigValue) []keyGroup {
	index := make(map[string]int)
	var groups []keyGroup
	for _, cv := range values {
		name := config.KeyGroup(cv.Key)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, keyGroup{name: name})
		}
		groups[i].values = append(groups[i].values, cv)
	}
	slices.SortFunc(groups, func(a, b keyGroup) int {
		switch {
		case a.name == b.name:
			return 0
		case a.name == "general":
			return -1
		case b.name == "general":
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	return groups
}

func newListCmd() *cobra.Command {
	var changed, plain bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every configuration key by section",
		Long: `List every registered key grouped by section (general, identity,
metrics, store) with its effective value and source. Secrets are masked.

--changed hides keys still at their default. --plain prints
"key = value (source)" lines under [section] headers instead of markdown.`,
		Example: `  intake config list
  intake config list --changed --plain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := config.RegistryValues()
			if changed {
				values = slices.DeleteFunc(values, config.ConfigValue.IsDefault)
			}

			out := cmd.OutOrStdout()
			if len(values) == 0 {
				fmt.Fprintln(out, "All settings are at their defaults")
				return nil
			}

			groups := groupValues(values)
			if plain {
				writePlain(out, groups)
				return nil
			}
			cmdutil.PrintMarkdown(out, listMarkdown(groups))
			return nil
		},
	}

	cmd.Flags().BoolVar(&changed, "changed", false, "Only show keys that are not at their default")
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain text output")
	return cmd
}

func writePlain(w io.Writer, groups []keyGroup) {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%s]\n", g.name)
		for _, cv := range g.values {
			fmt.Fprintf(w, "%s = %v (%s)\n", cv.Key, config.DisplayValue(cv.Key, cv.Value), cv.Source)
		}
	}
}

func listMarkdown(groups []keyGroup) string {
	var md strings.Builder
	md.WriteString("# Configuration\n\n")
	for _, g := range groups {
		fmt.Fprintf(&md, "## %s\n\n", g.name)
		md.WriteString("| Key | Value | Source |\n|---|---|---|\n")
		for _, cv := range g.values {
			value := fmt.Sprint(config.DisplayValue(cv.Key, cv.Value))
			if value == "" {
				value = "*(empty)*"
			}
			fmt.Fprintf(&md, "| `%s` | %s | %s |\n", cv.Key, value, cv.Source)
		}
		md.WriteString("\n")
	}
	md.WriteString("*Precedence: ENV > ./intake.yaml > user config > defaults*\n")
	return md.String()
}
