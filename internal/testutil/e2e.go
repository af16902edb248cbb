// Package testutil provides helpers for relkit's end-to-end tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	// relkitBinaryPath caches the built relkit binary path.
	relkitBinaryPath string
	relkitBuildOnce  sync.Once
	relkitBuildErr   error
)

// E2EEnv provides an isolated environment for running the relkit binary
// against a scratch git repository. It manages PATH isolation (a mock gh
// shadows any real one so tests never reach GitHub) and environment
// sanitization (RELKIT_* and git credential variables are stripped).
type E2EEnv struct {
	t *testing.T

	// RepoDir is the scratch repository relkit runs in.
	RepoDir string

	// RemoteDir is the bare repository registered as origin, when
	// SetupBareRemote has been called.
	RemoteDir string

	binDir string
	env    []string
}

// CommandResult captures the result of running a relkit command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates an isolated E2E test environment.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	env := &E2EEnv{t: t}
	env.setup()
	return env
}

func (e *E2EEnv) setup() {
	e.t.Helper()

	tempDir := e.t.TempDir()
	e.RepoDir = filepath.Join(tempDir, "repo")
	e.binDir = filepath.Join(tempDir, "bin")

	for _, dir := range []string{e.RepoDir, e.binDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			e.t.Fatalf("creating %s: %v", dir, err)
		}
	}

	e.setupMockGH()
	e.buildRelkit()
	e.sanitizeEnv()
}

// setupMockGH installs a gh that reports a pre-1.0 version, so relkit
// treats publishing as unavailable and degrades to the manual notice.
func (e *E2EEnv) setupMockGH() {
	e.t.Helper()

	script := "#!/bin/sh\necho \"gh version 0.5.0 (mock)\"\nexit 0\n"
	if err := os.WriteFile(filepath.Join(e.binDir, "gh"), []byte(script), 0o755); err != nil {
		e.t.Fatalf("writing mock gh: %v", err)
	}
}

func (e *E2EEnv) buildRelkit() {
	e.t.Helper()

	relkitBuildOnce.Do(func() {
		_, currentFile, _, ok := runtime.Caller(0)
		if !ok {
			relkitBuildErr = fmt.Errorf("determining current file location")
			return
		}
		repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

		binPath := filepath.Join(os.TempDir(), fmt.Sprintf("relkit-e2e-%d", os.Getpid()))
		cmd := exec.Command("go", "build", "-o", binPath, "./cmd/relkit")
		cmd.Dir = repoRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			relkitBuildErr = fmt.Errorf("building relkit: %v\n%s", err, out)
			return
		}
		relkitBinaryPath = binPath
	})

	if relkitBuildErr != nil {
		e.t.Fatalf("%v", relkitBuildErr)
	}
}

// sanitizeEnv builds the child environment: the mock bin dir leads PATH,
// and variables that would change relkit's behavior are dropped.
func (e *E2EEnv) sanitizeEnv() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		switch {
		case strings.HasPrefix(key, "RELKIT_"):
		case key == "GITHUB_TOKEN", key == "GIT_USERNAME", key == "GIT_PASSWORD":
		case key == "PATH":
			e.env = append(e.env, "PATH="+e.binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
		default:
			e.env = append(e.env, kv)
		}
	}
	e.env = append(e.env, "GIT_CONFIG_NOSYSTEM=1")
}

// Git runs a git command inside the scratch repository.
func (e *E2EEnv) Git(args ...string) string {
	e.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = e.RepoDir
	cmd.Env = e.env
	out, err := cmd.CombinedOutput()
	if err != nil {
		e.t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}

// InitGitRepo initializes the scratch repository on a main branch with a
// commit identity configured.
func (e *E2EEnv) InitGitRepo() {
	e.t.Helper()

	e.Git("init", "-b", "main")
	e.Git("config", "user.name", "relkit e2e")
	e.Git("config", "user.email", "e2e@example.invalid")
}

// SetupBareRemote creates a bare repository and registers it as origin.
func (e *E2EEnv) SetupBareRemote() {
	e.t.Helper()

	e.RemoteDir = filepath.Join(filepath.Dir(e.RepoDir), "remote.git")
	cmd := exec.Command("git", "init", "--bare", e.RemoteDir)
	cmd.Env = e.env
	if out, err := cmd.CombinedOutput(); err != nil {
		e.t.Fatalf("git init --bare: %v\n%s", err, out)
	}
	e.Git("remote", "add", "origin", e.RemoteDir)
}

// WriteFile writes a file inside the scratch repository.
func (e *E2EEnv) WriteFile(name, content string) {
	e.t.Helper()

	if err := os.WriteFile(filepath.Join(e.RepoDir, name), []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing %s: %v", name, err)
	}
}

// ReadFile reads a file from the scratch repository.
func (e *E2EEnv) ReadFile(name string) string {
	e.t.Helper()

	data, err := os.ReadFile(filepath.Join(e.RepoDir, name))
	if err != nil {
		e.t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

// Run executes the relkit binary with the given arguments inside the
// scratch repository.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(relkitBinaryPath, args...)
	cmd.Dir = e.RepoDir
	cmd.Env = e.env
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("running relkit %s: %v", strings.Join(args, " "), err)
		}
	}

	return CommandResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}
}
