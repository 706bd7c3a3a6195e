package main

import (
	"os"

	"github.com/scanward/scanward/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
