package main

import (
	"os"

	"github.com/brimdata/floyd/cmd/floyd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
