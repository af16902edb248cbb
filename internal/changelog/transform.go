package changelog

import (
	"fmt"
	"strings"
)

// PruneEmptySubsections removes subsections of the Unreleased section that
// have no non-blank body lines. It is a single top-to-bottom pass with
// three pieces of state: whether the walk is inside the Unreleased
// section, the last "### " header seen that has not been written out yet,
// and whether that header has been emitted.
//
// A pending subheader is only written once the first non-blank body line
// arrives; blank lines before that are suppressed. Once a subsection has
// content, its interior blank lines pass through unchanged. A "## " line
// closes the current section and, when it is itself "## Unreleased",
// opens a new one in the same step, so adjacent sections are handled
// correctly. The pass is idempotent.
func (d *Document) PruneEmptySubsections() *Document {
	out := make([]string, 0, len(d.lines))

	inUnreleased := false
	pendingSubheader := ""
	subheaderEmitted := false

	for _, line := range d.lines {
		if isSectionHeader(line) {
			// Section boundary: a still-pending subheader had no
			// content and is dropped here.
			inUnreleased = isUnreleasedHeader(line)
			pendingSubheader = ""
			subheaderEmitted = false
			out = append(out, line)
			continue
		}

		if !inUnreleased {
			out = append(out, line)
			continue
		}

		if isSubsectionHeader(line) {
			pendingSubheader = line
			subheaderEmitted = false
			continue
		}

		if subheaderEmitted {
			out = append(out, line)
			continue
		}

		if isBlank(line) {
			continue
		}

		if pendingSubheader != "" {
			out = append(out, pendingSubheader)
		}
		subheaderEmitted = true
		out = append(out, line)
	}

	return &Document{lines: out}
}

// ExtractReleaseNotes collects every line strictly inside the Unreleased
// section (between its header and the next "## " header, both exclusive)
// and trims leading and trailing runs of blank lines; interior blank
// lines are kept. It returns ErrMissingUnreleased when the document has
// no "## Unreleased" header.
func (d *Document) ExtractReleaseNotes() (string, error) {
	var body []string
	found := false
	collecting := false

	for _, line := range d.lines {
		if isSectionHeader(line) {
			if collecting {
				break
			}
			if isUnreleasedHeader(line) {
				found = true
				collecting = true
			}
			continue
		}
		if collecting {
			body = append(body, line)
		}
	}

	if !found {
		return "", ErrMissingUnreleased
	}

	return strings.Join(trimBlankRuns(body), "\n"), nil
}

// trimBlankRuns drops leading and trailing blank lines from a line slice.
func trimBlankRuns(lines []string) []string {
	start := 0
	for start < len(lines) && isBlank(lines[start]) {
		start++
	}
	end := len(lines)
	for end > start && isBlank(lines[end-1]) {
		end--
	}
	return lines[start:end]
}

// NormalizeSectionSpacing ensures exactly two blank lines precede every
// "## " section header, unless the header sits at the very start of the
// document where fewer preceding lines exist. Runs of three or more
// blank lines before a header are collapsed to two; missing blank lines
// are inserted by looking back at the last one or two emitted lines. The
// pass never touches spacing anywhere else and is idempotent.
func (d *Document) NormalizeSectionSpacing() *Document {
	out := make([]string, 0, len(d.lines))

	for _, line := range d.lines {
		if isSectionHeader(line) {
			out = padSectionGap(out)
		}
		out = append(out, line)
	}

	return &Document{lines: out}
}

// padSectionGap adjusts the tail of the emitted lines so that exactly two
// blank lines precede the section header about to be appended. No padding
// happens when the header is the first line of the document, and a single
// blank line that is also the whole document prefix is left alone.
func padSectionGap(out []string) []string {
	// Collapse an oversized gap first.
	for trailingBlanks(out) > 2 {
		out = out[:len(out)-1]
	}

	n := len(out)
	switch {
	case n == 0:
		// Header is the very first line; nothing to pad.
	case !isBlank(out[n-1]):
		out = append(out, "", "")
	case n >= 2 && !isBlank(out[n-2]):
		out = append(out, "")
	}
	return out
}

// trailingBlanks counts the blank lines at the end of the slice.
func trailingBlanks(lines []string) int {
	n := 0
	for i := len(lines) - 1; i >= 0 && isBlank(lines[i]); i-- {
		n++
	}
	return n
}

// RenameUnreleased replaces the "Unreleased" title of the first matching
// "## " header with "<version> - <date>", marking the section as
// released. Occurrences of the word elsewhere in the document are left
// untouched. It returns ErrMissingUnreleased when no such header exists.
func (d *Document) RenameUnreleased(version, date string) (*Document, error) {
	out := d.Lines()

	for i, line := range out {
		if isUnreleasedHeader(line) {
			out[i] = strings.Replace(line, UnreleasedTitle, fmt.Sprintf("%s - %s", version, date), 1)
			return &Document{lines: out}, nil
		}
	}

	return nil, ErrMissingUnreleased
}

// reopenBlock is the fresh Unreleased section inserted after a release:
// the section header plus empty Added, Changed, and Fixed subsections,
// each separated by one blank line.
var reopenBlock = []string{
	"",
	"## " + UnreleasedTitle,
	"",
	"### Added",
	"",
	"### Changed",
	"",
	"### Fixed",
	"",
}

// ReopenUnreleased inserts a fresh empty Unreleased section after the
// given anchor line (1-based; by convention the end of the document
// preamble). When the document is shorter than the anchor, the block is
// appended at the end.
func (d *Document) ReopenUnreleased(anchorLine int) *Document {
	idx := anchorLine
	if idx < 0 {
		idx = 0
	}
	if idx > len(d.lines) {
		idx = len(d.lines)
	}

	out := make([]string, 0, len(d.lines)+len(reopenBlock))
	out = append(out, d.lines[:idx]...)
	out = append(out, reopenBlock...)
	out = append(out, d.lines[idx:]...)

	return &Document{lines: out}
}
