// Package cli wires the cobra command surface for relkit: argument
// validation, flag handling, and assembly of the release pipeline from
// its collaborators.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relkit/internal/errors"
	"github.com/ariel-frischer/relkit/internal/semver"
)

var (
	devFlag    bool
	yesFlag    bool
	configFlag string
)

const releaseUsage = "relkit <major|minor|patch> [--dev] [--yes]"

var rootCmd = &cobra.Command{
	Use:   "relkit <major|minor|patch>",
	Short: "Release automation for semver-tagged projects",
	Long: `relkit automates a project's release workflow: it bumps the semantic
version, rewrites the Keep a Changelog document, and drives the release
through a short-lived branch, an annotated tag, and a GitHub release.

The positional argument selects which version component to increment.
A full release creates a release-<version> branch, turns the Unreleased
changelog section into the released section, commits, tags, pushes,
publishes via the gh CLI, and reopens the changelog for the next cycle.
With --dev only the version artifacts are bumped to <next>-dev and
committed.`,
	Example: `  relkit patch             # release the next patch version
  relkit minor             # release the next minor version
  relkit patch --dev       # bump artifacts to <next>-dev, nothing else
  relkit major --yes       # release without confirmation prompts`,
	Args:          validateBumpArg,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Path to the project config file (default .relkit.yml)")
	rootCmd.Flags().BoolVar(&devFlag, "dev", false,
		"Bump version artifacts to the next -dev version without releasing")
	rootCmd.Flags().BoolVar(&yesFlag, "yes", false,
		"Answer yes to every confirmation prompt")
}

// validateBumpArg requires exactly one positional argument naming a bump
// kind. Anything else is an argument error carrying the usage line.
func validateBumpArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.NewArgumentErrorWithUsage(
			fmt.Sprintf("expected exactly one release type, got %d arguments", len(args)),
			releaseUsage,
			"pass one of: major, minor, patch",
		)
	}
	if _, err := semver.ParseKind(args[0]); err != nil {
		return errors.NewArgumentErrorWithUsage(err.Error(), releaseUsage)
	}
	return nil
}

// Execute runs the root command. Structured errors are printed with
// their remediation before the non-nil error is returned to main.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	if cliErr := errors.AsCLIError(err); cliErr != nil {
		errors.PrintError(cliErr)
	} else {
		errors.PrintError(errors.Wrap(err, errors.Runtime))
	}
	return err
}
