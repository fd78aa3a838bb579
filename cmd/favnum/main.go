// Command favnum is the command-line client for the favorite number registry.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/favnum/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
