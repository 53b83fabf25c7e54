package main

import (
	"fmt"
	"os"

	"github.com/kestrelvcs/kestrel/internal/repo"
	"github.com/kestrelvcs/kestrel/internal/termcolor"
)

func runInit(_ []string, cw *termcolor.Writer) int {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel init: %v\n", err)
		return 1
	}
	if _, err := repo.Init(dir); err != nil {
		fmt.Fprintf(os.Stderr, "kestrel init: %v\n", err)
		return 1
	}
	fmt.Printf("Initialized empty kestrel repository in %s\n", cw.Cyan(dir))
	return 0
}
