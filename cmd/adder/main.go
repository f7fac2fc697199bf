package main

import (
	"fmt"
	"os"

	"github.com/skim-satellite/adder/cmd/adder/cmd"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := cmd.Execute(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitFailure
	}
	return exitSuccess
}
