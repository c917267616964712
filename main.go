// Package main is the entry point for the picobuild CLI.
package main

import "picobuild.dev/pkg/picobuild/cmd"

func main() {
	cmd.Execute()
}
