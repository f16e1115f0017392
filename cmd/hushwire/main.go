package main

import (
	"os"

	"hushwire/cmd/hushwire/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
