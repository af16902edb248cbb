// Package git provides the version-control collaborator for the release
// pipeline. It uses the go-git library for all repository operations:
// tag lookup, dirty checks, commits, branch management, fast-forward
// merges, and pushes. Every operation is blocking and a failure is fatal
// to the caller; no operation retries.
package git

import (
	"fmt"
	"os"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/ariel-frischer/relkit/internal/semver"
)

// debugLogger is a function that logs debug messages when debug mode is
// enabled. By default, it's a no-op. Set it via SetDebugLogger.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Repo wraps an opened git repository together with the remote used for
// push operations.
type Repo struct {
	repo   *gogit.Repository
	remote string
}

// Open opens the git repository at the given path, traversing up the
// directory tree to find the repository root. An empty path uses the
// current working directory. remote names the remote pushed to during a
// release (normally "origin").
func Open(path, remote string) (*Repo, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return &Repo{repo: repo, remote: remote}, nil
}

// Root returns the absolute path to the repository worktree root.
func (r *Repo) Root() (string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	return worktree.Filesystem.Root(), nil
}

// CurrentBranch returns the name of the current branch, or an empty
// string in detached HEAD state.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD state")
		return "", nil
	}
	return head.Name().Short(), nil
}

// LatestTag returns the name of the highest semantic-version tag carrying
// the given prefix (e.g. "v" matches v1.2.3). Tags that do not parse as
// semantic versions are skipped. Returns an empty string when no matching
// tag exists.
func (r *Repo) LatestTag(prefix string) (string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return "", fmt.Errorf("listing tags: %w", err)
	}

	var bestName string
	var best semver.Version
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		v, perr := semver.Parse(strings.TrimPrefix(name, prefix))
		if perr != nil {
			return nil
		}
		if bestName == "" || semver.Compare(v, best) > 0 {
			best = v
			bestName = name
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("iterating tags: %w", err)
	}

	logDebug("[git] LatestTag(%q): %s", prefix, bestName)
	return bestName, nil
}

// DirtyPaths returns the subset of the given repository-relative paths
// that carry uncommitted changes, staged or unstaged.
func (r *Repo) DirtyPaths(paths ...string) ([]string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("getting worktree status: %w", err)
	}

	var dirty []string
	for _, path := range paths {
		fs, ok := status[path]
		if !ok {
			continue
		}
		if fs.Staging != gogit.Unmodified || fs.Worktree != gogit.Unmodified {
			dirty = append(dirty, path)
		}
	}
	return dirty, nil
}

// AddAndCommit stages the given repository-relative paths and creates a
// commit with the given message. Returns the commit hash.
func (r *Repo) AddAndCommit(message string, paths ...string) (string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	for _, path := range paths {
		if _, err := worktree.Add(path); err != nil {
			return "", fmt.Errorf("staging %s: %w", path, err)
		}
	}

	hash, err := worktree.Commit(message, &gogit.CommitOptions{})
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}

	logDebug("[git] AddAndCommit: %s %q", hash, message)
	return hash.String(), nil
}

// LastCommitSummary returns a short description of the HEAD commit for
// user inspection: abbreviated hash, subject line, and touched files.
func (r *Repo) LastCommitSummary() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("resolving HEAD commit: %w", err)
	}

	var sb strings.Builder
	subject, _, _ := strings.Cut(commit.Message, "\n")
	fmt.Fprintf(&sb, "commit %s\n%s", head.Hash().String()[:8], subject)

	stats, err := commit.Stats()
	if err == nil {
		for _, stat := range stats {
			fmt.Fprintf(&sb, "\n  %s (+%d -%d)", stat.Name, stat.Addition, stat.Deletion)
		}
	}
	return sb.String(), nil
}

// CreateBranch creates a new branch at HEAD and checks it out.
// Returns an error if the branch already exists.
func (r *Repo) CreateBranch(name string) error {
	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRef, false); err == nil {
		return fmt.Errorf("branch %q already exists", name)
	} else if err != plumbing.ErrReferenceNotFound {
		return fmt.Errorf("checking branch existence: %w", err)
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD: %w", err)
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	// Keep: true preserves untracked files during checkout.
	err = worktree.Checkout(&gogit.CheckoutOptions{
		Hash:   head.Hash(),
		Branch: branchRef,
		Create: true,
		Keep:   true,
	})
	if err != nil {
		return fmt.Errorf("creating branch %q: %w", name, err)
	}

	logDebug("[git] CreateBranch: created and checked out %s", name)
	return nil
}

// Checkout switches the worktree to an existing branch.
func (r *Repo) Checkout(name string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	err = worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Keep:   true,
	})
	if err != nil {
		return fmt.Errorf("checking out %q: %w", name, err)
	}
	return nil
}

// MergeFastForward merges the named branch into the currently checked-out
// branch, allowing only a fast-forward: the current HEAD must be an
// ancestor of the branch tip. Anything else is an error.
func (r *Repo) MergeFastForward(branch string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return fmt.Errorf("cannot merge in detached HEAD state")
	}

	targetRef, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return fmt.Errorf("resolving branch %q: %w", branch, err)
	}

	if head.Hash() == targetRef.Hash() {
		return nil
	}

	headCommit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("resolving HEAD commit: %w", err)
	}
	targetCommit, err := r.repo.CommitObject(targetRef.Hash())
	if err != nil {
		return fmt.Errorf("resolving %q commit: %w", branch, err)
	}

	isAncestor, err := headCommit.IsAncestor(targetCommit)
	if err != nil {
		return fmt.Errorf("checking merge ancestry: %w", err)
	}
	if !isAncestor {
		return fmt.Errorf("merging %q into %s is not a fast-forward", branch, head.Name().Short())
	}

	newRef := plumbing.NewHashReference(head.Name(), targetRef.Hash())
	if err := r.repo.Storer.SetReference(newRef); err != nil {
		return fmt.Errorf("advancing %s: %w", head.Name().Short(), err)
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	if err := worktree.Reset(&gogit.ResetOptions{
		Mode:   gogit.HardReset,
		Commit: targetRef.Hash(),
	}); err != nil {
		return fmt.Errorf("updating worktree after merge: %w", err)
	}

	logDebug("[git] MergeFastForward: %s now at %s", head.Name().Short(), targetRef.Hash())
	return nil
}

// CreateAnnotatedTag creates an annotated tag pointing at HEAD.
func (r *Repo) CreateAnnotatedTag(name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD: %w", err)
	}

	_, err = r.repo.CreateTag(name, head.Hash(), &gogit.CreateTagOptions{
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("creating tag %q: %w", name, err)
	}

	logDebug("[git] CreateAnnotatedTag: %s at %s", name, head.Hash())
	return nil
}

// PushBranch pushes the named branch to the configured remote.
func (r *Repo) PushBranch(name string) error {
	spec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", name, name))
	return r.push(spec)
}

// PushTag pushes the named tag to the configured remote.
func (r *Repo) PushTag(name string) error {
	spec := config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", name, name))
	return r.push(spec)
}

// DeleteRemoteBranch deletes the named branch on the configured remote by
// pushing an empty refspec source.
func (r *Repo) DeleteRemoteBranch(name string) error {
	spec := config.RefSpec(fmt.Sprintf(":refs/heads/%s", name))
	return r.push(spec)
}

// DeleteLocalBranch removes the local branch reference and its
// configuration section. The branch must not be checked out.
func (r *Repo) DeleteLocalBranch(name string) error {
	head, err := r.repo.Head()
	if err == nil && head.Name() == plumbing.NewBranchReferenceName(name) {
		return fmt.Errorf("cannot delete checked-out branch %q", name)
	}

	if err := r.repo.DeleteBranch(name); err != nil && err != gogit.ErrBranchNotFound {
		return fmt.Errorf("removing branch config for %q: %w", name, err)
	}

	if err := r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)); err != nil {
		return fmt.Errorf("deleting branch %q: %w", name, err)
	}

	logDebug("[git] DeleteLocalBranch: %s", name)
	return nil
}

// push executes a single refspec push against the configured remote.
// An already-up-to-date result is not an error.
func (r *Repo) push(spec config.RefSpec) error {
	auth, err := r.remoteAuth()
	if err != nil {
		return err
	}

	logDebug("[git] push %s to %s", spec, r.remote)
	err = r.repo.Push(&gogit.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       auth,
	})
	if err == gogit.NoErrAlreadyUpToDate {
		return nil
	}
	if err != nil {
		return fmt.Errorf("pushing %s to %s: %w", spec, r.remote, err)
	}
	return nil
}

// remoteAuth returns the authentication method for the configured remote.
// SSH URLs use SSH agent auth, HTTPS URLs use environment credentials
// (GIT_USERNAME/GIT_PASSWORD, or GITHUB_TOKEN as username).
func (r *Repo) remoteAuth() (transport.AuthMethod, error) {
	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return nil, fmt.Errorf("looking up remote %q: %w", r.remote, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, nil
	}
	url := urls[0]

	if isLocalURL(url) {
		return nil, nil
	}

	if isSSHURL(url) {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil, nil
		}
		return auth, nil
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		username = os.Getenv("GITHUB_TOKEN")
		password = ""
	}

	if username != "" {
		return &http.BasicAuth{Username: username, Password: password}, nil
	}
	return nil, nil
}

// isLocalURL checks if a remote URL is a plain filesystem path, which
// needs no authentication.
func isLocalURL(url string) bool {
	return strings.HasPrefix(url, "/") ||
		strings.HasPrefix(url, "./") ||
		strings.HasPrefix(url, "../") ||
		strings.HasPrefix(url, "file://")
}

// isSSHURL checks if a URL is an SSH URL.
// Detects git@ (SCP-style), ssh://, and git+ssh:// schemes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}
