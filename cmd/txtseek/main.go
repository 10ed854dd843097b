// Package main provides the entry point for the txtseek CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/txtseek/cmd/txtseek/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
