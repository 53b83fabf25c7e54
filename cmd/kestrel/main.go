// Command kestrel is the CLI front end for the kestrel version control engine.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/kestrelvcs/kestrel/internal/cli"
	"github.com/kestrelvcs/kestrel/internal/config"
	"github.com/kestrelvcs/kestrel/internal/repo"
	"github.com/kestrelvcs/kestrel/internal/termcolor"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	config.InitLogger()

	gf, args := parseGlobalFlags(os.Args[1:])

	cw := termcolor.NewWriter(os.Stdout, gf.colorMode)

	app := cli.NewApp("kestrel", version)
	app.Stderr = os.Stderr
	app.VersionFunc = printVersion

	// repository is populated after dispatch determines the matched command
	// needs it (NeedsRepo); command closures capture the pointer and see
	// the loaded value when they run.
	var repository *repo.Repository

	app.Register(&cli.Command{
		Name:     "init",
		Category: "Start a repository",
		Summary:  "Create a new repository in the current directory",
		Usage:    "kestrel init",
		Run:      func(args []string) int { return runInit(args, cw) },
	})

	app.Register(&cli.Command{
		Name:      "add",
		Category:  "Work on the current change",
		Summary:   "Stage files for the next commit",
		Usage:     "kestrel add <path>...",
		Examples:  []string{"kestrel add file.txt", "kestrel add src/"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runAdd(repository, args) },
	})

	app.Register(&cli.Command{
		Name:      "rm",
		Category:  "Work on the current change",
		Summary:   "Unstage and delete tracked files",
		Usage:     "kestrel rm <path>...",
		NeedsRepo: true,
		Run:       func(args []string) int { return runRm(repository, args) },
	})

	app.Register(&cli.Command{
		Name:      "commit",
		Category:  "Branches and history",
		Summary:   "Record staged changes",
		Usage:     "kestrel commit -m <message>",
		Examples:  []string{"kestrel commit -m \"first commit\""},
		NeedsRepo: true,
		Run:       func(args []string) int { return runCommit(repository, args) },
	})

	app.Register(&cli.Command{
		Name:      "status",
		Category:  "Work on the current change",
		Summary:   "Show working tree status",
		Usage:     "kestrel status",
		NeedsRepo: true,
		Run:       func(args []string) int { return runStatus(repository, args, cw) },
	})

	app.Register(&cli.Command{
		Name:      "branch",
		Category:  "Branches and history",
		Summary:   "List, create, or delete branches",
		Usage:     "kestrel branch [<name>] [-d <name>]",
		Examples:  []string{"kestrel branch", "kestrel branch feature", "kestrel branch -d feature"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runBranch(repository, args, cw) },
	})

	app.Register(&cli.Command{
		Name:      "checkout",
		Category:  "Branches and history",
		Summary:   "Switch branches",
		Usage:     "kestrel checkout <branch> | kestrel checkout -b <name>",
		Examples:  []string{"kestrel checkout main", "kestrel checkout -b feature"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runCheckout(repository, args) },
	})

	app.Register(&cli.Command{
		Name:      "merge",
		Category:  "Branches and history",
		Summary:   "Merge a branch into the current branch",
		Usage:     "kestrel merge <branch>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runMerge(repository, args, cw) },
	})

	app.Register(&cli.Command{
		Name:      "watch",
		Category:  "Tooling",
		Summary:   "Serve a live read-only dashboard for this repository",
		Usage:     "kestrel watch [--addr host:port]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runWatch(repository, args) },
	})

	app.Register(&cli.Command{
		Name:     "version",
		Category: "Tooling",
		Summary:  "Show version information",
		Usage:    "kestrel version",
		Run:      func([]string) int { printVersion(); return 0 },
	})

	if len(args) > 0 {
		if cmd := app.Lookup(args[0]); cmd != nil && cmd.NeedsRepo {
			var err error
			repository, err = repo.Open(".")
			if err != nil {
				fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
				os.Exit(128)
			}
		}
	}

	os.Exit(app.Run(args, cw))
}

func printVersion() {
	fmt.Printf("kestrel %s\n", version)
	fmt.Printf("  commit:     %s\n", commit)
	fmt.Printf("  built:      %s\n", buildDate)
	fmt.Printf("  go version: %s\n", runtime.Version())
	fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
