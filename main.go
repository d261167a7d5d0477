package main

import (
	"os"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
