// Command tabby is a CSV/TSV data-processing toolkit: one sub-command
// per pipeline shape, dispatched the way `go` or `git` dispatch
// theirs, each a thin script wiring flag parsing onto the core
// pipeline/record/moonblade/selection/agg/containers packages.
package main

import (
	"fmt"
	"os"
)

var commands = map[string]func(args []string) error{
	"select":    cmdSelect,
	"filter":    cmdFilter,
	"map":       cmdMap,
	"transform": cmdTransform,
	"agg":       cmdAgg,
	"groupby":   cmdGroupby,
	"top":       cmdTop,
	"sort":      cmdSort,
	"explode":   cmdExplode,
	"implode":   cmdImplode,
	"partition": cmdPartition,
	"dedup":     cmdDedup,
	"cluster":   cmdCluster,
	"frequency": cmdFrequency,
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tabby <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands:")
	for name := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", name)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "tabby: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err := cmd(os.Args[2:]); err != nil {
		exitWithError(err)
	}
}
