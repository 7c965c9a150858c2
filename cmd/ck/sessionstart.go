package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jenningsloy318/context-keeper/hook"
	"github.com/jenningsloy318/context-keeper/store"
)

func sessionStartCmd() *cli.Command {
	return &cli.Command{
		Name:  "session-start",
		Usage: "Inject the latest saved summary into a resuming session",
		Description: `Hook entry point for the session-start lifecycle event. Prints the
most recent fresh summary wrapped in a context envelope; skips silently on
clear or startup sources, missing artifacts, or stale summaries. Always
exits 0.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return injectLatest(store.Summaries, hook.ReadInput(os.Stdin))
		},
	}
}
