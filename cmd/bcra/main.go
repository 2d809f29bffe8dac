package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcra-go/bcra/internal/commands"
	"github.com/bcra-go/bcra/pkg/resilience"
)

// Version information (injected via ldflags at build time)
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := commands.NewRootCommand(version)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to a process exit code: 2 for usage and
// configuration mistakes, 3 for API rejections, 4 for transient
// failures that exhausted retries, 130 on interrupt.
func exitCode(err error) int {
	switch resilience.KindOf(err) {
	case resilience.KindClient, resilience.KindParse:
		return 3
	case resilience.KindConnection, resilience.KindTimeout, resilience.KindRateLimited, resilience.KindServer:
		return 4
	case resilience.KindCancelled:
		return 130
	}
	return 2
}
