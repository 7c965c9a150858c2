package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "ck",
		Usage: "Persist session summaries and memories across context compactions",
		Description: `
Lifecycle hooks and utilities for session continuity: summarize a session
before compaction, save incremental memories, and inject the latest saved
context into a new session. Hook subcommands read their invocation context
as JSON on stdin; stdout carries only host-consumed content.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			precompactCmd(),
			sessionStartCmd(),
			saveMemoryCmd(),
			loadMemoryCmd(),
			loadContextCmd(),
			listSessionsCmd(),
			listContextCmd(),
			toolCmd(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
