package main

import (
	"os"

	"github.com/StuartRutty/lidarr-music-importer/cmd/lidarr-importer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
