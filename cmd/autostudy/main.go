// Package main provides the autostudy command, which keeps a course page
// playing and advances through its lessons until all are complete.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
