package main

import (
	"os"

	"trx/cmd/trx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
