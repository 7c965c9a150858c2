package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/jenningsloy318/context-keeper/extract"
	"github.com/jenningsloy318/context-keeper/hook"
	"github.com/jenningsloy318/context-keeper/nowledge"
	"github.com/jenningsloy318/context-keeper/store"
	"github.com/jenningsloy318/context-keeper/transcript"
)

func saveMemoryCmd() *cli.Command {
	return &cli.Command{
		Name:  "save-memory",
		Usage: "Distill and persist a memory of the session since the last compaction",
		Description: `Incremental memory pipeline. Only records newer than the session's
last compaction boundary are summarized. Memory generation requires the LLM;
when it is unavailable or fails nothing is written and the command still
exits cleanly.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "session-id",
				Usage: "Session ID (overrides stdin hook input)",
			},
			&cli.StringFlag{
				Name:  "project-path",
				Usage: "Project directory (overrides stdin hook input)",
			},
			&cli.StringFlag{
				Name:  "transcript-path",
				Usage: "Transcript file (overrides stdin hook input)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in := hook.ReadInput(os.Stdin)
			if v := cmd.String("session-id"); v != "" {
				in.SessionID = v
			}
			if v := cmd.String("project-path"); v != "" {
				in.CWD = v
			}
			if v := cmd.String("transcript-path"); v != "" {
				in.TranscriptPath = v
			}

			if in.TranscriptPath == "" {
				log.Info("no transcript path, nothing to remember")
				return nil
			}

			st := store.New(projectRoot(in.CWD), store.Memories)
			cutoff := st.LastCompactionTime(in.SessionID, in.TranscriptPath)
			if cutoff != "" {
				log.Debug("summarizing incrementally", "since", cutoff)
			}

			records, skipped := transcript.ReadFile(in.TranscriptPath)
			if skipped > 0 {
				log.Warn("skipped malformed transcript lines", "count", skipped)
			}

			ex := extract.Extractor{Cwd: in.CWD}
			content := ex.Extract(records, cutoff)
			if content.MessageCount == 0 {
				log.Info("no new messages since last compaction")
				return nil
			}

			meta := in.Metadata(time.Now(), "SessionEnd")
			gen := newGenerator(in.CWD)
			mem := gen.Memory(ctx, content, meta)
			if mem == nil {
				log.Info("memory generation unavailable, nothing saved")
				return nil
			}
			enrichMetadata(&meta, content, mem.Full)

			path, err := st.Save(meta.SessionID, mem.Full, meta)
			if err != nil {
				log.Error("save memory", "err", err)
				return nil
			}

			log.Info("memory saved",
				"session", meta.SessionID,
				"messages", content.MessageCount,
				"distilled_chars", len(mem.Distilled),
				"path", path)

			// Replicate the distilled memory to the local knowledge store.
			// Best effort: the artifact on disk is already the durable copy.
			if err := nowledge.New().Push(mem, meta); err != nil {
				log.Warn("knowledge store push failed", "err", err)
			} else {
				log.Info("distilled memory pushed to knowledge store")
			}
			return nil
		},
	}
}
