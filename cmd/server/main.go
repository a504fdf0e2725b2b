package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"recolector/internal/cli"
)

// The shell on its own: equivalent to `recolector serve`.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.ExecuteArgs(ctx, append([]string{"serve"}, os.Args[1:]...))
	stop()
	os.Exit(code)
}
