// Command gcq is the command-line front end for gopyan, the static
// call-graph analyzer.
package main

import (
	"fmt"
	"os"

	"github.com/l3aro/gopyan/cmd/gcq/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
