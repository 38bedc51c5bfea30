// SPDX-License-Identifier: Apache-2.0
package version

import (
	"fmt"
	"runtime/debug"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Intake/pkg/registration"
)

// String returns the display version, "dev" when unset
func String(version string) string {
	if version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		return "dev"
	}
	if v, err := goversion.NewVersion(version); err == nil {
		return v.String()
	}
	return version
}

// NewVersionCmd creates the version command
func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the current version of intake and the profile record schema it writes.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "intake version %s (record schema %s)\n", String(version), registration.SchemaVersion)
		},
	}
}
