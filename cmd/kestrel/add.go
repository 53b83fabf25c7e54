package main

import (
	"fmt"
	"os"

	"github.com/kestrelvcs/kestrel/internal/repo"
)

func runAdd(repository *repo.Repository, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: kestrel add <path>...")
		return 1
	}
	if err := repository.Add(args...); err != nil {
		fmt.Fprintf(os.Stderr, "kestrel add: %v\n", err)
		return 1
	}
	return 0
}
