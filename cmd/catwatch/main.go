// Package main is the entry point for catwatch.
package main

import (
	"os"

	"github.com/awharton/catwatch/cmd/catwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
