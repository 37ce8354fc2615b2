// Package main is the entry point for the tomolog CLI.
package main

import (
	"os"

	"github.com/mittoalb/tomolog-cli/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
