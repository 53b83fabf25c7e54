package main

import (
	"fmt"
	"os"

	"github.com/kestrelvcs/kestrel/internal/progress"
	"github.com/kestrelvcs/kestrel/internal/repo"
)

func runCheckout(repository *repo.Repository, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: kestrel checkout <branch> | kestrel checkout -b <name>")
		return 1
	}

	if args[0] == "-b" {
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: kestrel checkout -b <name>")
			return 1
		}
		if err := repository.CheckoutNewBranch(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "kestrel checkout: %v\n", err)
			return 1
		}
		fmt.Printf("Switched to a new branch '%s'\n", args[1])
		return 0
	}

	spinner := progress.New(fmt.Sprintf("switching to %s", args[0]))
	spinner.Start()
	err := repository.Checkout(args[0])
	spinner.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel checkout: %v\n", err)
		return 1
	}
	fmt.Printf("Switched to branch '%s'\n", args[0])
	return 0
}
