package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/canvas-helper-api/internal/config"
)

func main() {
	cmd := newRootCommand(config.Load)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
