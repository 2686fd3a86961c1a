package main

import (
	"os"

	"github.com/mhelleborg/taskforce/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
