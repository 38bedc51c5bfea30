// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// HelpMarkdown describes cmd as markdown for glamour: description, usage,
// examples, subcommands and flags
func HelpMarkdown(cmd *cobra.Command) string {
	var md strings.Builder

	fmt.Fprintf(&md, "# %s\n\n", cmd.Name())
	if desc := cmd.Long; desc != "" {
		fmt.Fprintf(&md, "%s\n\n", desc)
	} else if cmd.Short != "" {
		fmt.Fprintf(&md, "%s\n\n", cmd.Short)
	}
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&md, "Aliases: `%s`\n\n", strings.Join(cmd.Aliases, "`, `"))
	}

	writeSections(&md, cmd, "##")

	if cmd.Example != "" {
		fmt.Fprintf(&md, "## Examples\n\n```\n%s\n```\n\n", cmd.Example)
	}

	var topics []string
	for _, sub := range cmd.Commands() {
		if sub.IsAdditionalHelpTopicCommand() {
			topics = append(topics, fmt.Sprintf("- **%s** - %s", sub.CommandPath(), sub.Short))
		}
	}
	if len(topics) > 0 {
		fmt.Fprintf(&md, "## Additional Help Topics\n\n%s\n\n", strings.Join(topics, "\n"))
	}

	fmt.Fprintf(&md, "Use `%s [command] --help` for more information about a command.\n", cmd.CommandPath())
	return md.String()
}

// UsageMarkdown is the short form printed on usage errors
func UsageMarkdown(cmd *cobra.Command) string {
	var md strings.Builder
	writeSections(&md, cmd, "###")
	return md.String()
}

// writeSections adds usage, subcommand and flag sections under heading
func writeSections(md *strings.Builder, cmd *cobra.Command, heading string) {
	if cmd.Runnable() {
		fmt.Fprintf(md, "%s Usage\n\n```\n%s\n```\n\n", heading, cmd.UseLine())
	}

	var subs []string
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() && !sub.IsAdditionalHelpTopicCommand() {
			subs = append(subs, fmt.Sprintf("- **%s** - %s", sub.Name(), sub.Short))
		}
	}
	if len(subs) > 0 {
		fmt.Fprintf(md, "%s Available Commands\n\n%s\n\n", heading, strings.Join(subs, "\n"))
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(md, "%s Flags\n\n```\n%s\n```\n\n", heading, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(md, "%s Global Flags\n\n```\n%s\n```\n\n", heading, cmd.InheritedFlags().FlagUsages())
	}
}
