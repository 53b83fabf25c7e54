package main

import (
	"fmt"
	"os"

	"github.com/kestrelvcs/kestrel/internal/repo"
)

func runCommit(repository *repo.Repository, args []string) int {
	message := ""
	for i := 0; i < len(args); i++ {
		if args[i] == "-m" && i+1 < len(args) {
			message = args[i+1]
			i++
		}
	}

	digest, err := repository.Commit(message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel commit: %v\n", err)
		return 1
	}
	fmt.Printf("[%s] %s\n", digest.Short(), message)
	return 0
}
