// Package main is the entry point for the pactfix CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wronai/pactfix/internal/cli"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
	return cli.Execute(ctx, cli.NewRootCommand(info), os.Args[1:])
}
