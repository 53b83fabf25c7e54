// Package progress provides terminal progress indicators for long-running
// repository operations (checkout, merge).
package progress

import (
	"os"

	"github.com/kestrelvcs/kestrel/internal/termcolor"
	"github.com/pterm/pterm"
)

// Spinner displays an animated spinner on stderr while a long-running
// operation is in progress. It is only displayed when stderr is a TTY;
// in non-interactive environments (piped output, CI, E2E tests) it is silent.
type Spinner struct {
	msg     string
	printer *pterm.SpinnerPrinter
}

// New creates a Spinner that will display msg alongside the animation.
func New(msg string) *Spinner {
	return &Spinner{msg: msg}
}

// Start begins the spinner animation. It writes to stderr so it never
// pollutes stdout, and does nothing when stderr is not a terminal.
func (s *Spinner) Start() {
	if !termcolor.IsTerminal(os.Stderr.Fd()) {
		return
	}
	p := pterm.DefaultSpinner.WithWriter(os.Stderr)
	printer, err := p.Start(s.msg)
	if err != nil {
		return
	}
	s.printer = printer
}

// Stop halts the spinner animation and clears the line.
func (s *Spinner) Stop() {
	if s.printer != nil {
		_ = s.printer.Stop()
	}
}

// Success stops the spinner and prints a success line in its place.
func (s *Spinner) Success(msg string) {
	if s.printer != nil {
		s.printer.Success(msg)
		return
	}
}
