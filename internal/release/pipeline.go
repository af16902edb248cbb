// Package release sequences the semver engine and the changelog model
// against the version-control and publishing collaborators. It owns all
// file I/O: documents and versions are loaded into values, transformed by
// the pure engines, and persisted back here.
//
// Execution is strictly sequential. There is no retry and no rollback:
// any failure aborts immediately, and side effects already performed
// (commits, branches, tags) are left in place for manual inspection.
package release

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariel-frischer/relkit/internal/changelog"
	"github.com/ariel-frischer/relkit/internal/config"
	"github.com/ariel-frischer/relkit/internal/errors"
	"github.com/ariel-frischer/relkit/internal/output"
	"github.com/ariel-frischer/relkit/internal/progress"
	"github.com/ariel-frischer/relkit/internal/semver"
)

// GitClient is the version-control collaborator consumed by the pipeline.
// internal/git.Repo implements it; tests substitute a recording fake.
type GitClient interface {
	LatestTag(prefix string) (string, error)
	DirtyPaths(paths ...string) ([]string, error)
	AddAndCommit(message string, paths ...string) (string, error)
	LastCommitSummary() (string, error)
	CreateBranch(name string) error
	Checkout(name string) error
	MergeFastForward(branch string) error
	CreateAnnotatedTag(name, message string) error
	PushBranch(name string) error
	PushTag(name string) error
	DeleteRemoteBranch(name string) error
	DeleteLocalBranch(name string) error
}

// Pipeline drives a dev-only bump or a full release.
type Pipeline struct {
	Git       GitClient
	Cfg       *config.Configuration
	Confirm   Confirmer
	Publisher Publisher
	Out       io.Writer

	// Root is the repository root; all configured file paths are
	// resolved relative to it.
	Root string

	// Spin animates long-running push/publish steps; may be nil.
	Spin *progress.StepSpinner

	// Now supplies the release date; defaults to time.Now. Injected so
	// tests get deterministic dates.
	Now func() time.Time
}

// Run executes the workflow for the given bump kind. devOnly selects the
// increment-only workflow with no branching, tagging, pushing, or
// publishing.
func (p *Pipeline) Run(kind semver.Kind, devOnly bool) error {
	current, err := p.currentVersion()
	if err != nil {
		return err
	}

	next := current.Bump(kind)

	if devOnly {
		return p.runDevBump(next)
	}
	return p.runRelease(next)
}

// currentVersion determines the version being released from: the highest
// release tag, falling back to the version file when no tag exists yet.
func (p *Pipeline) currentVersion() (semver.Version, error) {
	tag, err := p.Git.LatestTag(p.Cfg.TagPrefix)
	if err != nil {
		return semver.Version{}, errors.Wrap(err, errors.Runtime)
	}

	if tag != "" {
		v, err := semver.Parse(strings.TrimPrefix(tag, p.Cfg.TagPrefix))
		if err != nil {
			return semver.Version{}, errors.WrapWithMessage(err, errors.Runtime,
				fmt.Sprintf("parsing latest tag %q", tag))
		}
		return v, nil
	}

	data, err := os.ReadFile(p.path(p.Cfg.VersionFile))
	if err != nil {
		return semver.Version{}, errors.NewPreconditionError(
			fmt.Sprintf("no release tag matching %q and no readable %s file", p.Cfg.TagPrefix, p.Cfg.VersionFile),
			fmt.Sprintf("create a %s file containing the current version", p.Cfg.VersionFile),
			fmt.Sprintf("or tag the current release (e.g. git tag %s0.1.0)", p.Cfg.TagPrefix),
		)
	}

	v, err := semver.Parse(string(data))
	if err != nil {
		return semver.Version{}, errors.WrapWithMessage(err, errors.Runtime,
			fmt.Sprintf("parsing %s", p.Cfg.VersionFile))
	}
	return v, nil
}

// runDevBump advances the version artifacts to "<next>-dev" and commits
// the change. Nothing is branched, tagged, pushed, or published.
func (p *Pipeline) runDevBump(next semver.Version) error {
	dev := next.Dev()
	output.PrintStep(p.Out, fmt.Sprintf("Bumping development version to %s", dev))

	if err := p.writeVersionArtifacts(dev.String()); err != nil {
		return err
	}

	message := fmt.Sprintf("Bump version to %s", dev)
	if _, err := p.Git.AddAndCommit(message, p.Cfg.VersionArtifacts()...); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	if err := p.confirmLastCommit("Keep this commit?"); err != nil {
		return err
	}

	output.PrintSuccess(p.Out, fmt.Sprintf("Development version is now %s", dev))
	return nil
}

// runRelease executes the full release pipeline for the next version.
func (p *Pipeline) runRelease(next semver.Version) error {
	if err := p.checkCleanTree(); err != nil {
		return err
	}

	version := next.String()
	branch := p.Cfg.BranchPrefix + version
	tag := p.Cfg.TagPrefix + version

	output.PrintStep(p.Out, fmt.Sprintf("Releasing %s on branch %s", version, branch))
	if err := p.Git.CreateBranch(branch); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	notes, err := p.transformChangelog(version)
	if err != nil {
		return err
	}

	if err := p.writeVersionArtifacts(version); err != nil {
		return err
	}

	if _, err := p.Git.AddAndCommit("Release "+version, p.Cfg.ReleaseFiles()...); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	if err := p.confirmLastCommit("Does the release commit look correct?"); err != nil {
		return err
	}

	if err := p.Git.CreateAnnotatedTag(tag, "Release "+version); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	if err := p.reopenChangelog(); err != nil {
		return err
	}

	devNext := next.Bump(semver.Patch).Dev()
	if err := p.writeVersionArtifacts(devNext.String()); err != nil {
		return err
	}
	message := fmt.Sprintf("Bump version to %s", devNext)
	files := append([]string{p.Cfg.ChangelogFile}, p.Cfg.VersionArtifacts()...)
	if _, err := p.Git.AddAndCommit(message, files...); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	if err := p.runStep(fmt.Sprintf("Pushing %s to %s", branch, p.Cfg.Remote), func() error {
		return p.Git.PushBranch(branch)
	}); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	prompt := fmt.Sprintf("Merge %s into %s and publish %s?", branch, p.Cfg.MainBranch, tag)
	if !p.Confirm.Confirm(prompt) {
		return p.rejected()
	}

	if err := p.Git.Checkout(p.Cfg.MainBranch); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}
	if err := p.Git.MergeFastForward(branch); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	if err := p.runStep(fmt.Sprintf("Pushing %s and %s", p.Cfg.MainBranch, tag), func() error {
		if err := p.Git.PushBranch(p.Cfg.MainBranch); err != nil {
			return err
		}
		return p.Git.PushTag(tag)
	}); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	if err := p.publish(tag, notes); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	if err := p.Git.DeleteRemoteBranch(branch); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}
	if err := p.Git.DeleteLocalBranch(branch); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}

	output.PrintSuccess(p.Out, fmt.Sprintf("Released %s", tag))
	return nil
}

// checkCleanTree refuses to start when the tracked release files already
// carry uncommitted changes. This is an advisory start-time check, not a
// lock.
func (p *Pipeline) checkCleanTree() error {
	dirty, err := p.Git.DirtyPaths(p.Cfg.ReleaseFiles()...)
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}
	if len(dirty) > 0 {
		return errors.NewPreconditionError(
			fmt.Sprintf("uncommitted changes in release files: %s", strings.Join(dirty, ", ")),
			"commit or stash these files before releasing",
		)
	}
	return nil
}

// transformChangelog applies the release transformations in order: prune
// empty subsections, extract the release notes, normalize section
// spacing, and rename the Unreleased section. Returns the extracted notes.
func (p *Pipeline) transformChangelog(version string) (string, error) {
	path := p.path(p.Cfg.ChangelogFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WrapWithMessage(err, errors.Runtime, "reading changelog")
	}

	doc := changelog.Parse(string(data)).PruneEmptySubsections()

	notes, err := doc.ExtractReleaseNotes()
	if err != nil {
		return "", p.missingUnreleased(err)
	}

	doc = doc.NormalizeSectionSpacing()

	doc, err = doc.RenameUnreleased(version, p.releaseDate())
	if err != nil {
		return "", p.missingUnreleased(err)
	}

	if err := os.WriteFile(path, []byte(doc.String()), 0o644); err != nil {
		return "", errors.WrapWithMessage(err, errors.Runtime, "writing changelog")
	}
	return notes, nil
}

// reopenChangelog inserts a fresh Unreleased section for the next
// development cycle.
func (p *Pipeline) reopenChangelog() error {
	path := p.path(p.Cfg.ChangelogFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "reading changelog")
	}

	doc := changelog.Parse(string(data)).ReopenUnreleased(p.Cfg.ChangelogAnchorLine)

	if err := os.WriteFile(path, []byte(doc.String()), 0o644); err != nil {
		return errors.WrapWithMessage(err, errors.Runtime, "writing changelog")
	}
	return nil
}

// writeVersionArtifacts writes the version string into the version file
// and, when configured, the package descriptor.
func (p *Pipeline) writeVersionArtifacts(version string) error {
	if err := WriteVersionFile(p.path(p.Cfg.VersionFile), version); err != nil {
		return errors.Wrap(err, errors.Runtime)
	}
	if p.Cfg.DescriptorFile != "" {
		if err := RewriteDescriptor(p.path(p.Cfg.DescriptorFile), version); err != nil {
			return errors.Wrap(err, errors.Runtime)
		}
	}
	return nil
}

// confirmLastCommit shows the HEAD commit and asks the user to approve
// it. Rejection aborts the pipeline; the commit is left in place.
func (p *Pipeline) confirmLastCommit(prompt string) error {
	summary, err := p.Git.LastCommitSummary()
	if err != nil {
		return errors.Wrap(err, errors.Runtime)
	}
	output.PrintCommitPreview(p.Out, summary)

	if !p.Confirm.Confirm(prompt) {
		return p.rejected()
	}
	return nil
}

// publish hands the release to the publishing collaborator. An absent or
// too-old collaborator degrades to a printed manual-action notice; an
// actual publishing failure is fatal like any other collaborator failure.
func (p *Pipeline) publish(tag, notes string) error {
	if p.Publisher == nil || !p.Publisher.Available() {
		output.PrintNotice(p.Out, fmt.Sprintf(
			"gh CLI (>= 1.0) not found; create the %s release manually with these notes:", tag))
		fmt.Fprintf(p.Out, "\n%s\n\n", notes)
		return nil
	}

	return p.runStep(fmt.Sprintf("Publishing release %s", tag), func() error {
		return p.Publisher.Publish(tag, tag, notes)
	})
}

// runStep runs fn under the step spinner when one is configured.
func (p *Pipeline) runStep(label string, fn func() error) error {
	p.Spin.Start(label)
	if err := fn(); err != nil {
		p.Spin.Fail()
		return err
	}
	p.Spin.Done()
	return nil
}

// rejected converts a declined confirmation into the fatal abort error.
func (p *Pipeline) rejected() error {
	return errors.NewRuntimeError(
		"aborted by user",
		"completed commits, branches, and tags are left in place for inspection",
		"clean up manually if the release should not proceed",
	)
}

// missingUnreleased maps the changelog sentinel onto a precondition error
// with remediation.
func (p *Pipeline) missingUnreleased(err error) error {
	return errors.WrapWithMessage(err, errors.Precondition,
		fmt.Sprintf("transforming %s", p.Cfg.ChangelogFile),
		fmt.Sprintf("add a \"## %s\" section to %s", changelog.UnreleasedTitle, p.Cfg.ChangelogFile),
	)
}

// releaseDate formats today's UTC date for the renamed changelog section.
func (p *Pipeline) releaseDate() string {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return now().UTC().Format("2006-01-02")
}

// path resolves a configured repository-relative file path against the
// repository root.
func (p *Pipeline) path(file string) string {
	if p.Root == "" {
		return file
	}
	return filepath.Join(p.Root, file)
}
