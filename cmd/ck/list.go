package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jenningsloy318/context-keeper/core"
	"github.com/jenningsloy318/context-keeper/store"
)

func listSessionsCmd() *cli.Command {
	return &cli.Command{
		Name:  "list-sessions",
		Usage: "List sessions with saved artifacts",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root := projectRoot("")
			summaries := store.New(root, store.Summaries).List("")
			memories := store.New(root, store.Memories).List("")

			type row struct {
				summaries int
				memories  int
				lastSaved string
				project   string
			}
			rows := make(map[string]*row)
			var order []string

			tally := func(entries []core.IndexEntry, memory bool) {
				for _, e := range entries {
					r, ok := rows[e.SessionID]
					if !ok {
						r = &row{}
						rows[e.SessionID] = r
						order = append(order, e.SessionID)
					}
					if memory {
						r.memories++
					} else {
						r.summaries++
					}
					if e.CreatedAt > r.lastSaved {
						r.lastSaved = e.CreatedAt
					}
					if r.project == "" {
						r.project = e.Project
					}
				}
			}
			tally(summaries, false)
			tally(memories, true)

			if len(order) == 0 {
				fmt.Println("No saved sessions.")
				return nil
			}

			fmt.Println("| Session | Summaries | Memories | Last Saved | Project |")
			fmt.Println("|---------|-----------|----------|------------|---------|")
			for _, sid := range order {
				r := rows[sid]
				fmt.Printf("| %s | %d | %d | %s | %s |\n",
					shortSession(sid), r.summaries, r.memories, r.lastSaved, r.project)
			}
			return nil
		},
	}
}

func listContextCmd() *cli.Command {
	return &cli.Command{
		Name:      "list-context",
		Usage:     "List saved summaries, newest first",
		ArgsUsage: "[session-id-prefix]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			entries := store.New(projectRoot(""), store.Summaries).List(cmd.Args().First())
			if len(entries) == 0 {
				fmt.Println("No saved summaries.")
				return nil
			}

			fmt.Println("| Saved | Session | Trigger | Messages | Created |")
			fmt.Println("|-------|---------|---------|----------|---------|")
			for _, e := range entries {
				fmt.Printf("| %s | %s | %s | %d | %s |\n",
					e.Timestamp, shortSession(e.SessionID), e.Trigger, e.MessageCount, e.CreatedAt)
			}
			return nil
		},
	}
}

func shortSession(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
