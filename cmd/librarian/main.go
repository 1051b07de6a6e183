// Package main is the librarian entry point.
// See docs/ARCHITECTURE.md § CLI.
package main

import (
	"os"

	"github.com/srulre/classiq-library/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
