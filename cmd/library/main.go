// Package main provides the library CLI.
//
//	library [--store postgres|sqlite|memory] [--dsn DSN] CMD key=value...
package main

import (
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		printErrors(stderr, err)
		return 1
	}
	return 0
}
