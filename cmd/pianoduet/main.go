// Package main provides the pianoduet CLI.
//
// Usage:
//
//	pianoduet [flags] <command> [args]
//
// Commands:
//
//	list    - List the built-in sheets
//	play    - Play a sheet live, optionally exporting it at the same time
//	export  - Render a sheet to a 16-bit stereo WAV file
//
// Sheets are either built-in names or paths to YAML files.
package main

import (
	"fmt"
	"os"

	"github.com/cbegin/pianoduet-go/cmd/pianoduet/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
