package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relkit/internal/config"
	"github.com/ariel-frischer/relkit/internal/errors"
)

var initForceFlag bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented .relkit.yml config template",
	Long: `Write a fully commented configuration template to .relkit.yml in the
current directory. Every option is listed with its default value, so the
file works unedited.

Examples:
  relkit init              # Create .relkit.yml (refuses to overwrite)
  relkit init --force      # Overwrite an existing .relkit.yml`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false,
		"Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := config.DefaultProjectConfigPath

	if _, err := os.Stat(path); err == nil && !initForceFlag {
		return errors.NewConfigError(
			fmt.Sprintf("%s already exists", path),
			"pass --force to overwrite it",
		)
	}

	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "writing config template")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}
