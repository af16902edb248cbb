package release

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ariel-frischer/relkit/internal/semver"
)

// Publisher is the release-publishing collaborator. Available reports
// whether publishing can happen at all; when it cannot, the pipeline
// degrades to a printed manual-action notice instead of failing.
type Publisher interface {
	Available() bool
	Publish(tag, title, notes string) error
}

// GHPublisher publishes releases through the GitHub CLI. It requires a
// `gh` binary on the PATH reporting a major version of at least 1.
type GHPublisher struct {
	// Dir is the working directory for gh invocations (the repo root).
	Dir string
}

// NewGHPublisher returns a publisher running gh inside dir.
func NewGHPublisher(dir string) *GHPublisher {
	return &GHPublisher{Dir: dir}
}

// Available reports whether a usable gh binary is present.
func (g *GHPublisher) Available() bool {
	if _, err := exec.LookPath("gh"); err != nil {
		return false
	}

	out, err := exec.Command("gh", "--version").Output()
	if err != nil {
		return false
	}

	major, err := ghMajorVersion(string(out))
	if err != nil {
		return false
	}
	return major >= 1
}

// ghMajorVersion extracts the major version from `gh --version` output,
// whose first line looks like "gh version 2.40.1 (2023-12-13)".
func ghMajorVersion(output string) (int, error) {
	firstLine, _, _ := strings.Cut(output, "\n")
	fields := strings.Fields(firstLine)
	if len(fields) < 3 {
		return 0, fmt.Errorf("unexpected gh version output %q", firstLine)
	}

	v, err := semver.Parse(fields[2])
	if err != nil {
		return 0, fmt.Errorf("parsing gh version: %w", err)
	}
	return v.Major, nil
}

// Publish creates a GitHub release for the tag, passing the release notes
// through a temporary file. Any gh failure surfaces its diagnostic output
// verbatim.
func (g *GHPublisher) Publish(tag, title, notes string) error {
	notesFile, err := os.CreateTemp("", "relkit-notes-*.md")
	if err != nil {
		return fmt.Errorf("creating notes file: %w", err)
	}
	defer os.Remove(notesFile.Name())

	if _, err := notesFile.WriteString(notes); err != nil {
		notesFile.Close()
		return fmt.Errorf("writing notes file: %w", err)
	}
	if err := notesFile.Close(); err != nil {
		return fmt.Errorf("closing notes file: %w", err)
	}

	cmd := exec.Command("gh", "release", "create", tag,
		"--title", title,
		"--notes-file", notesFile.Name(),
	)
	cmd.Dir = g.Dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("gh release create failed: %w\n%s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
