// Command enginebridge drives a line-protocol engine through the queue
// bridge. See "enginebridge --help".
package main

import (
	"fmt"
	"os"

	"github.com/roach88/enginebridge/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return cli.GetExitCode(err)
}
