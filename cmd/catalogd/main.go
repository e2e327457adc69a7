package main

import (
	"os"

	"github.com/shopkit-io/catalogd/cmd/catalogd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
