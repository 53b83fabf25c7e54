package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/kestrelvcs/kestrel/internal/termcolor"
)

func TestFormatAppHelp(t *testing.T) {
	app := NewApp("kestrel", "2.0.0")
	var buf bytes.Buffer
	app.Stderr = &buf

	app.Register(&Command{Name: "commit", Category: "Branches and history", Summary: "Record staged changes", Run: func([]string) int { return 0 }})
	app.Register(&Command{Name: "merge", Category: "Branches and history", Summary: "Merge a branch into the current branch", Run: func([]string) int { return 0 }})

	cw := termcolor.NewWriter(os.Stdout, termcolor.ColorNever)
	FormatAppHelp(app, cw)

	out := buf.String()

	checks := []string{
		"kestrel version 2.0.0",
		"Usage:",
		"Branches and history:",
		"commit",
		"Record staged changes",
		"merge",
		"Merge a branch into the current branch",
		"Global flags:",
		"--color",
		"--no-color",
		"--version",
	}
	for _, s := range checks {
		if !strings.Contains(out, s) {
			t.Errorf("FormatAppHelp output missing %q", s)
		}
	}
}

func TestFormatAppHelpGroupsByCategory(t *testing.T) {
	app := NewApp("kestrel", "2.0.0")
	var buf bytes.Buffer
	app.Stderr = &buf

	app.Register(&Command{Name: "init", Category: "Start a repository", Summary: "Create a repository", Run: func([]string) int { return 0 }})
	app.Register(&Command{Name: "add", Category: "Work on the current change", Summary: "Stage files", Run: func([]string) int { return 0 }})
	app.Register(&Command{Name: "status", Category: "Work on the current change", Summary: "Show status", Run: func([]string) int { return 0 }})
	app.Register(&Command{Name: "frob", Summary: "Uncategorized", Run: func([]string) int { return 0 }})

	cw := termcolor.NewWriter(os.Stdout, termcolor.ColorNever)
	FormatAppHelp(app, cw)

	out := buf.String()

	// Categories appear in first-registration order, uncategorized last.
	startIdx := strings.Index(out, "Start a repository:")
	workIdx := strings.Index(out, "Work on the current change:")
	otherIdx := strings.Index(out, "Other commands:")
	if startIdx < 0 || workIdx < 0 || otherIdx < 0 {
		t.Fatalf("missing group heading in output:\n%s", out)
	}
	if !(startIdx < workIdx && workIdx < otherIdx) {
		t.Fatalf("group headings out of order: %d, %d, %d", startIdx, workIdx, otherIdx)
	}

	// Commands sit under their own heading, not the next one.
	addIdx := strings.Index(out, "add")
	if addIdx < workIdx || addIdx > otherIdx {
		t.Fatalf("expected add listed under its category heading")
	}
}

func TestFormatCommandHelp(t *testing.T) {
	app := NewApp("kestrel", "2.0.0")
	var buf bytes.Buffer
	app.Stderr = &buf

	cmd := &Command{
		Name:      "checkout",
		Summary:   "Switch branches",
		Usage:     "kestrel checkout <branch> | kestrel checkout -b <name>",
		Examples:  []string{"kestrel checkout main", "kestrel checkout -b feature"},
		Run:       func([]string) int { return 0 },
		NeedsRepo: true,
	}

	cw := termcolor.NewWriter(os.Stdout, termcolor.ColorNever)
	FormatCommandHelp(app, cmd, cw)

	out := buf.String()

	checks := []string{
		"checkout",
		"Switch branches",
		"Usage:",
		"kestrel checkout <branch> | kestrel checkout -b <name>",
		"Examples:",
		"kestrel checkout -b feature",
		"Runs inside a repository",
	}
	for _, s := range checks {
		if !strings.Contains(out, s) {
			t.Errorf("FormatCommandHelp output missing %q", s)
		}
	}
}

func TestFormatCommandHelpNoRepoNote(t *testing.T) {
	app := NewApp("kestrel", "2.0.0")
	var buf bytes.Buffer
	app.Stderr = &buf

	cmd := &Command{
		Name:    "init",
		Summary: "Create a new repository in the current directory",
		Usage:   "kestrel init",
		Run:     func([]string) int { return 0 },
	}

	cw := termcolor.NewWriter(os.Stdout, termcolor.ColorNever)
	FormatCommandHelp(app, cmd, cw)

	if strings.Contains(buf.String(), "Runs inside a repository") {
		t.Fatal("init help should not carry the repository note")
	}
}
