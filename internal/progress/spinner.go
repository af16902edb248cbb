package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// StepSpinner animates a single long-running pipeline step (pushing a
// branch, publishing a release). All methods are nil-safe so callers can
// carry a nil spinner in tests and non-interactive runs.
type StepSpinner struct {
	out     io.Writer
	spin    *spinner.Spinner
	symbols ProgressSymbols
	label   string
}

// NewStepSpinner creates a spinner writing to out. When the terminal is
// not interactive the spinner animation is disabled and only the start
// and completion lines are printed.
func NewStepSpinner(out io.Writer) *StepSpinner {
	caps := DetectTerminalCapabilities()
	symbols := SelectSymbols(caps)

	s := &StepSpinner{out: out, symbols: symbols}
	if caps.IsTTY {
		s.spin = spinner.New(
			spinner.CharSets[symbols.SpinnerSet],
			100*time.Millisecond,
			spinner.WithWriter(out),
		)
	}
	return s
}

// Start begins animating the step with the given label.
func (s *StepSpinner) Start(label string) {
	if s == nil {
		return
	}
	s.label = label
	if s.spin == nil {
		fmt.Fprintf(s.out, "%s...\n", label)
		return
	}
	s.spin.Suffix = " " + label
	s.spin.Start()
}

// Done stops the animation and prints a success line for the step.
func (s *StepSpinner) Done() {
	if s == nil {
		return
	}
	if s.spin != nil {
		s.spin.Stop()
	}
	fmt.Fprintf(s.out, "%s %s\n", s.symbols.Checkmark, s.label)
}

// Fail stops the animation and prints a failure line for the step.
func (s *StepSpinner) Fail() {
	if s == nil {
		return
	}
	if s.spin != nil {
		s.spin.Stop()
	}
	fmt.Fprintf(s.out, "%s %s\n", s.symbols.Failure, s.label)
}
