// Command menukit encodes, inspects, tests and serves stateless menus.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/menukit/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "menukit:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
