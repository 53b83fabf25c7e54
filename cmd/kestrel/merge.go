package main

import (
	"fmt"
	"os"

	"github.com/kestrelvcs/kestrel/internal/progress"
	"github.com/kestrelvcs/kestrel/internal/repo"
	"github.com/kestrelvcs/kestrel/internal/termcolor"
)

func runMerge(repository *repo.Repository, args []string, cw *termcolor.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: kestrel merge <branch>")
		return 1
	}

	spinner := progress.New(fmt.Sprintf("merging %s", args[0]))
	spinner.Start()
	outcome, err := repository.Merge(args[0])
	spinner.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel merge: %v\n", err)
		return 1
	}

	switch {
	case outcome.FastForward:
		fmt.Printf("Fast-forward to %s\n", cw.Green(outcome.Commit.Short()))
	case outcome.NoOp:
		fmt.Println("Already up to date.")
	default:
		fmt.Printf("Merge made commit %s\n", cw.Green(outcome.Commit.Short()))
	}

	if len(outcome.Conflicts) > 0 {
		fmt.Println(cw.Bold("\nConflicts:"))
		for _, c := range outcome.Conflicts {
			ranges := ""
			for i, r := range c.Ranges {
				if i > 0 {
					ranges += ", "
				}
				ranges += r.String()
			}
			fmt.Printf("  %s: %s\n", cw.Red(c.Path), ranges)
		}
		return 1
	}
	return 0
}
