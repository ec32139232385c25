package main

import (
	"os"

	"github.com/solatis/policystore/cmd/policystore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
