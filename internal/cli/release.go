package cli

import (
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relkit/internal/config"
	"github.com/ariel-frischer/relkit/internal/errors"
	"github.com/ariel-frischer/relkit/internal/git"
	"github.com/ariel-frischer/relkit/internal/progress"
	"github.com/ariel-frischer/relkit/internal/release"
	"github.com/ariel-frischer/relkit/internal/semver"
)

// runRelease assembles the pipeline from its collaborators and runs the
// workflow selected by the arguments.
func runRelease(cmd *cobra.Command, args []string) error {
	kind, err := semver.ParseKind(args[0])
	if err != nil {
		// Unreachable after validateBumpArg; kept for direct callers.
		return errors.NewArgumentErrorWithUsage(err.Error(), releaseUsage)
	}

	cfg, err := config.Load(configFlag)
	if err != nil {
		return errors.Wrap(err, errors.Configuration,
			"check .relkit.yml and any RELKIT_* environment overrides")
	}

	repo, err := git.Open(".", cfg.Remote)
	if err != nil {
		return errors.WrapWithMessage(err, errors.Precondition, "opening repository",
			"run relkit from inside a git repository")
	}

	root, err := repo.Root()
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	var confirm release.Confirmer = release.NewTerminalConfirmer()
	if yesFlag || cfg.SkipConfirmations {
		confirm = release.AutoConfirmer(true)
	}

	out := cmd.OutOrStdout()
	p := &release.Pipeline{
		Git:       repo,
		Cfg:       cfg,
		Confirm:   confirm,
		Publisher: release.NewGHPublisher(root),
		Out:       out,
		Root:      root,
		Spin:      progress.NewStepSpinner(out),
	}
	return p.Run(kind, devFlag)
}
