package main

import (
	"os"

	"github.com/bubbletea-slz/teahouse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
