package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"pattiprep/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command tree and returns the process exit code. Failures
// print the error and, when classified, a one-line hint.
func run(args []string, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 1
	}
	fmt.Fprintf(stderr, "pattiprep: %v\n", err)
	if hint := pipeline.Hint(err); hint != "" {
		fmt.Fprintf(stderr, "hint: %s\n", hint)
	}
	return 1
}
