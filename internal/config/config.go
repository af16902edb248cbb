// Package config provides configuration management for relkit using koanf.
// Values are loaded with priority: environment variables (RELKIT_*) >
// project config (.relkit.yml) > defaults. All paths are relative to the
// repository root.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultProjectConfigPath is where relkit looks for the project config.
const DefaultProjectConfigPath = ".relkit.yml"

// envPrefix is the prefix for environment variable overrides, e.g.
// RELKIT_MAIN_BRANCH=trunk.
const envPrefix = "RELKIT_"

// Configuration holds the release workflow settings.
type Configuration struct {
	// MainBranch is the long-lived branch release branches merge back into.
	MainBranch string `koanf:"main_branch"`

	// Remote is the name of the git remote pushed to during a release.
	Remote string `koanf:"remote"`

	// TagPrefix is prepended to the version when creating and looking up
	// release tags (e.g. "v" yields tags like v1.3.0).
	TagPrefix string `koanf:"tag_prefix"`

	// BranchPrefix is prepended to the version when naming the short-lived
	// release branch (e.g. "release-" yields release-1.3.0).
	BranchPrefix string `koanf:"branch_prefix"`

	// VersionFile is the plain-text file whose body is the bare version.
	VersionFile string `koanf:"version_file"`

	// ChangelogFile is the Keep a Changelog Markdown document.
	ChangelogFile string `koanf:"changelog_file"`

	// DescriptorFile is an optional package descriptor containing a
	// "name : <namespace>::<name>:<version>" line rewritten in place.
	// Empty disables descriptor rewriting.
	DescriptorFile string `koanf:"descriptor_file"`

	// ChangelogAnchorLine is the 1-based line after which a fresh
	// Unreleased section is inserted when reopening the changelog.
	ChangelogAnchorLine int `koanf:"changelog_anchor_line"`

	// SkipConfirmations answers every confirmation prompt affirmatively.
	// Can also be set via the --yes flag or RELKIT_SKIP_CONFIRMATIONS.
	SkipConfirmations bool `koanf:"skip_confirmations"`
}

// Load loads configuration from defaults, the project config file, and the
// environment. projectConfigPath overrides the default .relkit.yml
// location; an empty string uses the default, and a missing default file
// is not an error.
func Load(projectConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if err := loadProjectConfig(k, projectConfigPath); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadProjectConfig merges the project config file if it exists. A custom
// path that does not exist is an error; the default path is optional.
func loadProjectConfig(k *koanf.Koanf, customPath string) error {
	path := DefaultProjectConfigPath
	required := false
	if customPath != "" {
		path = customPath
		required = true
	}

	if _, err := os.Stat(path); err != nil {
		if required {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		return nil
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading config %s: %w", path, err)
	}
	return nil
}

// loadEnvironmentConfig merges RELKIT_* environment variables.
// RELKIT_MAIN_BRANCH maps to main_branch, and so on.
func loadEnvironmentConfig(k *koanf.Koanf) error {
	provider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading environment config: %w", err)
	}
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *Configuration) Validate() error {
	if c.MainBranch == "" {
		return fmt.Errorf("main_branch must not be empty")
	}
	if c.Remote == "" {
		return fmt.Errorf("remote must not be empty")
	}
	if c.VersionFile == "" {
		return fmt.Errorf("version_file must not be empty")
	}
	if c.ChangelogFile == "" {
		return fmt.Errorf("changelog_file must not be empty")
	}
	if c.ChangelogAnchorLine < 0 {
		return fmt.Errorf("changelog_anchor_line must not be negative, got %d", c.ChangelogAnchorLine)
	}
	return nil
}

// ReleaseFiles returns the files the release pipeline writes and commits:
// the version file, the changelog, and the descriptor when configured.
func (c *Configuration) ReleaseFiles() []string {
	files := []string{c.VersionFile, c.ChangelogFile}
	if c.DescriptorFile != "" {
		files = append(files, c.DescriptorFile)
	}
	return files
}

// VersionArtifacts returns the files carrying the bare version string:
// the version file and the descriptor when configured. The changelog is
// excluded because a dev-only bump never touches it.
func (c *Configuration) VersionArtifacts() []string {
	files := []string{c.VersionFile}
	if c.DescriptorFile != "" {
		files = append(files, c.DescriptorFile)
	}
	return files
}
