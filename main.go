package main

import (
	"os"

	"github.com/acdcgrid/ghds/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
