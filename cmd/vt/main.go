// Command vt browses a CSV of volunteer opportunities as a sortable,
// filterable table in the terminal or in a browser.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	closeLogFile()
	os.Exit(exitCode(err))
}
