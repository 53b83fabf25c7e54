package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/kestrelvcs/kestrel/internal/repo"
	"github.com/kestrelvcs/kestrel/internal/termcolor"
)

func runBranch(repository *repo.Repository, args []string, cw *termcolor.Writer) int {
	if len(args) > 0 && args[0] == "-d" {
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: kestrel branch -d <name>")
			return 1
		}
		if err := repository.DeleteBranch(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "kestrel branch: %v\n", err)
			return 1
		}
		return 0
	}

	if len(args) > 0 {
		if err := repository.CreateBranch(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "kestrel branch: %v\n", err)
			return 1
		}
		return 0
	}

	branches, err := repository.Branches()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel branch: %v\n", err)
		return 1
	}
	current, err := repository.CurrentBranch()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel branch: %v\n", err)
		return 1
	}

	names := make([]string, 0, len(branches))
	for name := range branches {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == current {
			fmt.Printf("* %s\n", cw.Green(name))
		} else {
			fmt.Printf("  %s\n", name)
		}
	}
	return 0
}
