package main

import (
	"os"

	"github.com/h2steel/flexbatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
