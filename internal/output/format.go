// Package output provides terminal output formatting utilities for the
// relkit CLI. This package is designed to have minimal dependencies to
// avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintStep prints a pipeline step announcement.
// Uses a magenta arrow and plain text for the step description.
func PrintStep(out io.Writer, message string) {
	magenta := color.New(color.FgMagenta).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", magenta("→"), message)
}

// PrintSuccess prints a completion message with a green checkmark.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), message)
}

// PrintNotice prints a yellow notice for situations requiring manual
// follow-up (e.g. the gh CLI is unavailable and the release must be
// published by hand).
func PrintNotice(out io.Writer, message string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("!"), message)
}

// PrintCommitPreview prints the last commit for user inspection before a
// confirmation prompt. The commit text is dimmed to set it apart.
func PrintCommitPreview(out io.Writer, commit string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "\n%s\n\n", dim(commit))
}
