package main

import (
	"os"

	"github.com/abhisek/proctor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
