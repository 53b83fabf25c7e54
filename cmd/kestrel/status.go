package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/kestrelvcs/kestrel/internal/repo"
	"github.com/kestrelvcs/kestrel/internal/termcolor"
)

func runStatus(repository *repo.Repository, _ []string, cw *termcolor.Writer) int {
	status, err := repository.ComputeStatus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	branch, err := repository.CurrentBranch()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	if branch != "" {
		fmt.Printf("On branch %s\n", cw.Cyan(branch))
	} else {
		head, _ := repository.CurrentCommit()
		fmt.Printf("HEAD detached at %s\n", head.Short())
	}
	if status.NoCommits {
		fmt.Println("\nNo commits yet")
	}

	stagedPaths := sortedKeys(status.Staged)
	if len(stagedPaths) > 0 {
		fmt.Println("\nChanges to be committed:")
		for _, p := range stagedPaths {
			prefix := "modified:   "
			switch status.Staged[p] {
			case repo.RightOnly:
				prefix = "new file:   "
			case repo.LeftOnly:
				prefix = "deleted:    "
			}
			fmt.Printf("\t%s\n", cw.Green(prefix+p))
		}
	}

	unstagedPaths := make([]string, 0, len(status.Unstaged))
	for p := range status.Unstaged {
		unstagedPaths = append(unstagedPaths, p)
	}
	sort.Strings(unstagedPaths)
	if len(unstagedPaths) > 0 {
		fmt.Println("\nChanges not staged for commit:")
		for _, p := range unstagedPaths {
			fmt.Printf("\t%s:   %s\n", status.Unstaged[p], p)
		}
	}

	if len(status.Untracked) > 0 {
		sort.Strings(status.Untracked)
		fmt.Println("\nUntracked files:")
		for _, p := range status.Untracked {
			fmt.Printf("\t%s\n", cw.Red(p))
		}
	}

	if len(stagedPaths) == 0 && len(unstagedPaths) == 0 && len(status.Untracked) == 0 {
		fmt.Println("\nnothing to commit, working tree clean")
	}
	return 0
}

func sortedKeys(m map[string]repo.Classification) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
