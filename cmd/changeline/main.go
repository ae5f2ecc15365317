// Package main provides the entry point for the changeline CLI tool.
package main

import "github.com/changeline/changeline/cmd/changeline/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
