package main

import (
	"os"

	"github.com/mesboard-dev/mesboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
