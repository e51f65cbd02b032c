package main

import (
	"os"

	"surrobench/cmd/surrobench/commands"
)

func main() {
	root := commands.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
