// Package main provides the entry point for the inkshelf CLI tool.
package main

import "github.com/inkshelf/inkshelf/cmd/inkshelf/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
