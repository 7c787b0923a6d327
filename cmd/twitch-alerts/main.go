package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := exitCode(newRootCommand().ExecuteContext(ctx), os.Stderr)
	if code != 0 {
		stop()
		os.Exit(code)
	}
}

// exitCode reports err and maps it to a process exit status. An interrupted
// command is a clean shutdown.
func exitCode(err error, stderr io.Writer) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	fmt.Fprintln(stderr, err)
	return 1
}
