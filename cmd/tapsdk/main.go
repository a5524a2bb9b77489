// Command tapsdk drives the TapTap PC SDK from the command line.
package main

import (
	"os"

	"github.com/roach88/tapsdk/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
