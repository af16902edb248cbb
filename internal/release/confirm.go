package release

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirmer answers the yes/no questions the pipeline asks at its
// checkpoints. Injecting it keeps the pipeline deterministic under test:
// substitute AutoConfirmer(true) or AutoConfirmer(false) for the terminal
// implementation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// AutoConfirmer answers every prompt with a fixed value. Used for the
// --yes flag and in tests.
type AutoConfirmer bool

// Confirm returns the fixed answer.
func (a AutoConfirmer) Confirm(string) bool {
	return bool(a)
}

// TerminalConfirmer prompts the user on the terminal and blocks until an
// answer arrives. Anything other than "y"/"yes" is a rejection, and a
// non-interactive stdin rejects immediately so unattended runs cannot
// hang.
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminalConfirmer returns a confirmer reading stdin and writing stdout.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{In: os.Stdin, Out: os.Stdout}
}

// Confirm asks a single yes/no question, defaulting to no.
func (c *TerminalConfirmer) Confirm(prompt string) bool {
	if f, ok := c.In.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(c.Out, "%s [y/N] (non-interactive, assuming no)\n", prompt)
		return false
	}

	fmt.Fprintf(c.Out, "%s [y/N] ", prompt)

	reader := bufio.NewReader(c.In)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
