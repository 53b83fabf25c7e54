package cli

import (
	"fmt"
	"io"

	"github.com/kestrelvcs/kestrel/internal/termcolor"
)

// fpf is a shorthand for fmt.Fprintf that discards the error, used for
// writing help text to stderr where write failures are non-actionable.
func fpf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}

// FormatAppHelp writes the top-level help text to app.Stderr. Commands
// are listed grouped by workflow category rather than alphabetically, so
// the help reads as "start a repository, stage changes, commit" instead
// of a flat dictionary.
func FormatAppHelp(app *App, cw *termcolor.Writer) {
	w := app.Stderr

	fpf(w, "%s version %s\n\n", app.Name, app.Version)
	fpf(w, "%s\n", cw.Bold("Usage:"))
	fpf(w, "  %s [global flags] <command> [<args>]\n\n", app.Name)

	fpf(w, "%s\n", cw.Bold("Global flags:"))
	fpf(w, "  %s   Color output: auto, always, never\n", cw.Yellow("--color=<mode>"))
	fpf(w, "  %s        Disable color output\n", cw.Yellow("--no-color"))
	fpf(w, "  %s         Show version and exit\n", cw.Yellow("--version"))

	// Align names across every group, not per-group.
	maxLen := 0
	for _, n := range app.order {
		if len(n) > maxLen {
			maxLen = len(n)
		}
	}

	for _, g := range app.groups() {
		title := g.category
		if title == "" {
			title = "Other commands"
		}
		fpf(w, "\n%s\n", cw.Bold(title+":"))
		for _, cmd := range g.commands {
			name := fmt.Sprintf("%-*s", maxLen, cmd.Name)
			fpf(w, "  %s  %s\n", cw.BoldCyan(name), cmd.Summary)
		}
	}

	fpf(w, "\nRun '%s help <command>' for more information on a command.\n", app.Name)
}

// FormatCommandHelp writes per-command help text to app.Stderr.
func FormatCommandHelp(app *App, cmd *Command, cw *termcolor.Writer) {
	w := app.Stderr

	fpf(w, "%s — %s\n\n", cw.BoldCyan(cmd.Name), cmd.Summary)

	if cmd.Usage != "" {
		fpf(w, "%s\n", cw.Bold("Usage:"))
		fpf(w, "  %s\n", cmd.Usage)
	}

	if len(cmd.Examples) > 0 {
		fpf(w, "\n%s\n", cw.Bold("Examples:"))
		for _, ex := range cmd.Examples {
			fpf(w, "  %s\n", ex)
		}
	}

	if cmd.NeedsRepo {
		fpf(w, "\nRuns inside a repository: invoke it from the repository root or any directory beneath it.\n")
	}
}
