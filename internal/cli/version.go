package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relkit/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print relkit version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "relkit %s\n", version.Version)
		fmt.Fprintf(out, "  commit: %s\n", version.Commit)
		fmt.Fprintf(out, "  built:  %s\n", version.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
