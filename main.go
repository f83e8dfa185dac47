package main

import (
	"os"

	"github.com/guildkeeper/guildkeeper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
