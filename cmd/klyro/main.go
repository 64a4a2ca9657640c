package main

import (
	"os"

	"github.com/klyro-io/klyro-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
