package main

import (
	"os"

	"github.com/simonhull/tagengine/internal/tagcmd"
)

func main() {
	if err := tagcmd.Execute(); err != nil {
		os.Exit(1)
	}
}
