package config

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"main_branch":           "main",
		"remote":                "origin",
		"tag_prefix":            "v",
		"branch_prefix":         "release-",
		"version_file":          "VERSION",
		"changelog_file":        "CHANGELOG.md",
		"descriptor_file":       "",
		"changelog_anchor_line": 7,
		"skip_confirmations":    false,
	}
}

// GetDefaultConfigTemplate returns a fully commented config template that
// documents every available option.
func GetDefaultConfigTemplate() string {
	return `# relkit configuration
# Environment overrides use the RELKIT_ prefix (e.g. RELKIT_MAIN_BRANCH).

main_branch: main              # Branch release branches merge back into
remote: origin                 # Git remote pushed to during a release
tag_prefix: v                  # Release tag prefix (v -> v1.3.0)
branch_prefix: release-        # Release branch prefix (release- -> release-1.3.0)
version_file: VERSION          # Plain-text file holding the bare version
changelog_file: CHANGELOG.md   # Keep a Changelog Markdown document
descriptor_file: ""            # Optional package descriptor with a name : ns::name:version line
changelog_anchor_line: 7       # Line after which the Unreleased section is reopened
skip_confirmations: false      # Answer every confirmation prompt with yes
`
}
