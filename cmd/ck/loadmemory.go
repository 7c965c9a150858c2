package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/jenningsloy318/context-keeper/hook"
	"github.com/jenningsloy318/context-keeper/store"
)

func loadMemoryCmd() *cli.Command {
	return &cli.Command{
		Name:      "load-memory",
		Usage:     "Load a saved memory, as a hook or by identifier",
		ArgsUsage: "[identifier]",
		Description: `With an identifier argument, looks the memory up manually by session
ID or timestamp prefix and prints its content. Without one, runs as a
session-start hook over memories: reads the invocation context from stdin
and injects the latest fresh memory.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if prefix := cmd.Args().First(); prefix != "" {
				return printArtifact(store.Memories, prefix)
			}
			return injectLatest(store.Memories, hook.ReadInput(os.Stdin))
		},
	}
}

func loadContextCmd() *cli.Command {
	return &cli.Command{
		Name:      "load-context",
		Usage:     "Print a saved summary by identifier",
		ArgsUsage: "[identifier]",
		Description: `Manual summary lookup. The identifier is a session ID or timestamp
prefix; the newest match wins. Without an identifier the latest summary is
printed.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return printArtifact(store.Summaries, cmd.Args().First())
		},
	}
}

// printArtifact resolves one artifact by prefix (latest when the prefix is
// empty) and writes its raw content to stdout.
func printArtifact(kind store.Kind, prefix string) error {
	st := store.New(projectRoot(""), kind)

	var art *store.Artifact
	if prefix == "" {
		art = st.LoadLatest("")
	} else {
		art = st.FindByIdentifier(prefix)
	}
	if art == nil {
		log.Info("no matching artifact found", "kind", kind, "identifier", prefix)
		return nil
	}

	log.Info("loaded", "kind", kind, "session", art.SessionID, "created_at", art.CreatedAt)
	fmt.Println(art.Content)
	return nil
}
