package main

import (
	"context"
	"fmt"
	"os"

	"github.com/claude/circuitry/internal/cli"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	root := cli.NewRootCmd(cli.Options{Version: Version})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
