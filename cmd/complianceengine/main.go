// Package main provides the command-line interface for the compliance
// engine tool.
package main

import "github.com/ukcompliance/complianceengine/internal/cli"

func main() {
	cli.Main()
}
