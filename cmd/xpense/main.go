package main

import (
	"os"

	"github.com/xpense-dev/xpense/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
