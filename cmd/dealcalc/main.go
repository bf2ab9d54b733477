// Package main is the entry point for the dealcalc CLI.
package main

import (
	"os"

	"github.com/Simplici0/dealcost/cmd/dealcalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
