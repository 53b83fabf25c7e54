package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/kestrelvcs/kestrel/internal/repo"
	"github.com/kestrelvcs/kestrel/internal/watch"
)

func runWatch(repository *repo.Repository, args []string) int {
	addr := ":7777"
	for i := 0; i < len(args); i++ {
		if args[i] == "--addr" && i+1 < len(args) {
			addr = args[i+1]
			i++
		}
	}

	pterm.DefaultBigText.WithLetters(pterm.NewLettersFromStringWithStyle("kestrel", pterm.NewStyle(pterm.FgCyan))).Render() //nolint:errcheck // startup banner is best-effort
	pterm.Info.Printfln("watching %s, dashboard on %s", repository.Root(), addr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := watch.NewServer(repository, nil)
	if err := server.Serve(ctx, addr); err != nil {
		fmt.Fprintf(os.Stderr, "kestrel watch: %v\n", err)
		return 1
	}
	return 0
}
