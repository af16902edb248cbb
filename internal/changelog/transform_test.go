package changelog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChangelog = `# Changelog

All notable changes to this project will be documented in this file.

The format is based on Keep a Changelog,
and this project adheres to Semantic Versioning.


## Unreleased

### Added

### Changed
- reworked the frobnicator

### Fixed
- fix X


## 1.2.3 - 2026-01-10

### Fixed
- previous fix
`

func TestPruneEmptySubsections(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
	}{
		"empty subsection dropped, non-empty kept": {
			input: "## Unreleased\n" +
				"### Added\n" +
				"\n" +
				"### Fixed\n" +
				"- fix X\n",
			expected: "## Unreleased\n" +
				"### Fixed\n" +
				"- fix X\n",
		},
		"interior blanks kept once content started": {
			input: "## Unreleased\n" +
				"### Changed\n" +
				"- one\n" +
				"\n" +
				"- two\n",
			expected: "## Unreleased\n" +
				"### Changed\n" +
				"- one\n" +
				"\n" +
				"- two\n",
		},
		"blanks before first content suppressed": {
			input: "## Unreleased\n" +
				"\n" +
				"### Added\n" +
				"\n" +
				"\n" +
				"- item\n",
			expected: "## Unreleased\n" +
				"### Added\n" +
				"- item\n",
		},
		"sections outside unreleased untouched": {
			input: "## 1.0.0 - 2025-01-01\n" +
				"### Added\n" +
				"\n" +
				"### Removed\n",
			expected: "## 1.0.0 - 2025-01-01\n" +
				"### Added\n" +
				"\n" +
				"### Removed\n",
		},
		"trailing empty subsection at section boundary dropped": {
			input: "## Unreleased\n" +
				"### Fixed\n" +
				"- fix X\n" +
				"### Added\n" +
				"## 1.0.0 - 2025-01-01\n" +
				"- old\n",
			expected: "## Unreleased\n" +
				"### Fixed\n" +
				"- fix X\n" +
				"## 1.0.0 - 2025-01-01\n" +
				"- old\n",
		},
		"adjacent unreleased section reopens tracking": {
			input: "## 1.0.0 - 2025-01-01\n" +
				"- old\n" +
				"## Unreleased\n" +
				"### Added\n" +
				"\n" +
				"## 0.9.0 - 2024-12-01\n" +
				"- older\n",
			expected: "## 1.0.0 - 2025-01-01\n" +
				"- old\n" +
				"## Unreleased\n" +
				"## 0.9.0 - 2024-12-01\n" +
				"- older\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Parse(tt.input).PruneEmptySubsections().String()
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPruneEmptySubsections_Idempotent(t *testing.T) {
	once := Parse(sampleChangelog).PruneEmptySubsections()
	twice := once.PruneEmptySubsections()

	assert.Equal(t, once.String(), twice.String())
}

func TestExtractReleaseNotes(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
	}{
		"trims leading and trailing blank runs only": {
			input: "## Unreleased\n" +
				"\n" +
				"\n" +
				"- item1\n" +
				"\n" +
				"- item2\n" +
				"\n" +
				"\n" +
				"\n" +
				"## 1.0.0 - 2025-01-01\n" +
				"- old\n",
			expected: "- item1\n\n- item2",
		},
		"stops at next section header": {
			input: "## Unreleased\n" +
				"### Fixed\n" +
				"- fix X\n" +
				"## 1.0.0 - 2025-01-01\n" +
				"- not mine\n",
			expected: "### Fixed\n- fix X",
		},
		"unreleased as last section": {
			input: "# Changelog\n" +
				"\n" +
				"## Unreleased\n" +
				"- only item\n",
			expected: "- only item",
		},
		"empty unreleased yields empty notes": {
			input: "## Unreleased\n" +
				"\n" +
				"## 1.0.0 - 2025-01-01\n",
			expected: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			notes, err := Parse(tt.input).ExtractReleaseNotes()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, notes)
		})
	}
}

func TestExtractReleaseNotes_MissingSection(t *testing.T) {
	doc := Parse("# Changelog\n\n## 1.0.0 - 2025-01-01\n- old\n")

	_, err := doc.ExtractReleaseNotes()
	require.ErrorIs(t, err, ErrMissingUnreleased)
}

func TestNormalizeSectionSpacing(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
	}{
		"no blank lines gets two": {
			input:    "intro\n## A\n",
			expected: "intro\n\n\n## A\n",
		},
		"one blank line gets one more": {
			input:    "intro\n\n## A\n",
			expected: "intro\n\n\n## A\n",
		},
		"two blank lines unchanged": {
			input:    "intro\n\n\n## A\n",
			expected: "intro\n\n\n## A\n",
		},
		"three blank lines collapsed to two": {
			input:    "intro\n\n\n\n## A\n",
			expected: "intro\n\n\n## A\n",
		},
		"header as first line untouched": {
			input:    "## A\nbody\n",
			expected: "## A\nbody\n",
		},
		"single leading blank before header untouched": {
			input:    "\n## A\n",
			expected: "\n## A\n",
		},
		"multiple headers": {
			input:    "intro\n## A\n- a\n## B\n",
			expected: "intro\n\n\n## A\n- a\n\n\n## B\n",
		},
		"subsection headers not affected": {
			input:    "## A\n### sub\n- a\n",
			expected: "## A\n### sub\n- a\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Parse(tt.input).NormalizeSectionSpacing().String()
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeSectionSpacing_Idempotent(t *testing.T) {
	once := Parse(sampleChangelog).NormalizeSectionSpacing()
	twice := once.NormalizeSectionSpacing()

	assert.Equal(t, once.String(), twice.String())
}

func TestNormalizeSectionSpacing_GapInvariant(t *testing.T) {
	normalized := Parse(sampleChangelog).NormalizeSectionSpacing()

	lines := normalized.Lines()
	for i, line := range lines {
		if !isSectionHeader(line) || i == 0 {
			continue
		}
		blanks := 0
		for j := i - 1; j >= 0 && isBlank(lines[j]); j-- {
			blanks++
		}
		assert.Equal(t, 2, blanks, "header %q at line %d", line, i+1)
	}
}

func TestRenameUnreleased(t *testing.T) {
	input := "# Notes about Unreleased work\n" +
		"\n" +
		"## Unreleased\n" +
		"- mentions Unreleased in a bullet\n" +
		"\n" +
		"## 1.0.0 - 2025-01-01\n"

	doc, err := Parse(input).RenameUnreleased("1.3.0", "2026-08-23")
	require.NoError(t, err)

	lines := doc.Lines()
	assert.Equal(t, "## 1.3.0 - 2026-08-23", lines[2])
	assert.Equal(t, "# Notes about Unreleased work", lines[0], "preamble occurrence untouched")
	assert.Equal(t, "- mentions Unreleased in a bullet", lines[3], "body occurrence untouched")
}

func TestRenameUnreleased_MissingSection(t *testing.T) {
	_, err := Parse("# Changelog\n").RenameUnreleased("1.0.0", "2026-08-23")
	require.ErrorIs(t, err, ErrMissingUnreleased)
}

func TestReopenUnreleased(t *testing.T) {
	input := strings.Join([]string{
		"# Changelog",          // 1
		"",                     // 2
		"All notable changes.", // 3
		"",                     // 4
		"Format notes,",        // 5
		"semver notes.",        // 6
		"",                     // 7
		"",                     // 8
		"## 1.3.0 - 2026-08-23",
		"- released item",
		"",
	}, "\n")

	doc := Parse(input).ReopenUnreleased(7)
	lines := doc.Lines()

	assert.Equal(t, "", lines[6], "anchor line preserved")
	assert.Equal(t, []string{
		"",
		"## Unreleased",
		"",
		"### Added",
		"",
		"### Changed",
		"",
		"### Fixed",
		"",
	}, lines[7:16])
	assert.Equal(t, "", lines[16], "original content resumes after the block")
	assert.Equal(t, "## 1.3.0 - 2026-08-23", lines[17])

	// The reopened section must be recognized by the other passes.
	notes, err := doc.ExtractReleaseNotes()
	require.NoError(t, err)
	assert.Equal(t, "### Added\n\n### Changed\n\n### Fixed", notes)
}

func TestReopenUnreleased_ShortDocumentAppends(t *testing.T) {
	doc := Parse("# Changelog\n").ReopenUnreleased(7)

	lines := doc.Lines()
	require.Greater(t, len(lines), 2)
	assert.Equal(t, "## Unreleased", lines[3])
}

func TestParseStringRoundTrip(t *testing.T) {
	assert.Equal(t, sampleChangelog, Parse(sampleChangelog).String())
}
