package main

import (
	"fmt"
	"os"

	"github.com/kestrelvcs/kestrel/internal/repo"
)

func runRm(repository *repo.Repository, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: kestrel rm <path>...")
		return 1
	}
	if err := repository.Rm(args...); err != nil {
		fmt.Fprintf(os.Stderr, "kestrel rm: %v\n", err)
		return 1
	}
	return 0
}
