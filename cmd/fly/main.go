package main

import (
	"os"

	"flywrapper/cmd/fly/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
