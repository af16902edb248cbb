// Package changelog models a "Keep a Changelog" style Markdown document as
// an ordered sequence of lines and provides the pure transformations used
// during a release: pruning empty subsections, extracting release notes,
// normalizing section spacing, renaming the Unreleased section, and
// reopening it for the next development cycle.
//
// Headers are recognized purely by a leading "## " / "### " marker at the
// start of a line; this is deliberately not a full Markdown parse. Every
// transformation is a pure pass over the line sequence and returns a new
// Document, so passes compose and stay independently testable.
package changelog

import (
	"errors"
	"strings"
)

// UnreleasedTitle is the distinguished section title accumulating notes
// for work that has not been published yet.
const UnreleasedTitle = "Unreleased"

// ErrMissingUnreleased is returned when a transformation requires the
// "## Unreleased" section and the document does not contain one.
var ErrMissingUnreleased = errors.New(`changelog has no "## Unreleased" section`)

// Document is an immutable ordered sequence of changelog lines.
type Document struct {
	lines []string
}

// Parse splits changelog text into a Document. Line splitting is exact:
// serializing the document back yields byte-identical text.
func Parse(text string) *Document {
	return &Document{lines: strings.Split(text, "\n")}
}

// FromLines builds a Document from a line slice. The slice is copied.
func FromLines(lines []string) *Document {
	d := &Document{lines: make([]string, len(lines))}
	copy(d.lines, lines)
	return d
}

// String serializes the document back to text.
func (d *Document) String() string {
	return strings.Join(d.lines, "\n")
}

// Lines returns a copy of the document's lines.
func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// isSectionHeader reports whether the line starts a "## "-level section.
func isSectionHeader(line string) bool {
	return strings.HasPrefix(line, "## ")
}

// isSubsectionHeader reports whether the line starts a "### " subsection.
func isSubsectionHeader(line string) bool {
	return strings.HasPrefix(line, "### ")
}

// isUnreleasedHeader reports whether the line is the Unreleased section
// header, i.e. a "## " header whose title is exactly "Unreleased".
func isUnreleasedHeader(line string) bool {
	return isSectionHeader(line) && strings.TrimSpace(strings.TrimPrefix(line, "## ")) == UnreleasedTitle
}

// isBlank reports whether the line contains only whitespace.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
