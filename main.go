package main

import (
	"os"

	"github.com/navbus/navbus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
