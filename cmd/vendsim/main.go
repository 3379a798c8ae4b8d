package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"vendsim/internal/cli"
)

// main owns the process lifecycle: one invocation opens the machine, runs one
// command, flushes the state and exits with a semantic code.
func main() {
	result, err := cli.Run(context.Background(), os.Args[1:], os.Stdout)
	if err != nil {
		var invErr *cli.InvocationError
		if errors.As(err, &invErr) {
			fmt.Fprintln(os.Stderr, invErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(result.ExitCode)
}
