package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil && !IsReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

// exitCode is GetExitCode for errors returned by the root command. Errors
// raised by cobra itself (unknown flags, wrong argument counts) are command
// errors.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		return ExitCommandError
	}
	return exitErr.Code
}
