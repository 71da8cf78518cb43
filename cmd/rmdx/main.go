package main

import (
	"os"

	"remindex/internal/rmdxcli"
)

func main() {
	if err := rmdxcli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
