// Package main is the entry point for the snogray-test CLI.
package main

import (
	"os"

	"github.com/snogglethorpe/snogray-test/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
