package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/jenningsloy318/context-keeper/extract"
	"github.com/jenningsloy318/context-keeper/hook"
	"github.com/jenningsloy318/context-keeper/store"
	"github.com/jenningsloy318/context-keeper/transcript"
)

func precompactCmd() *cli.Command {
	return &cli.Command{
		Name:  "precompact",
		Usage: "Summarize the session and persist it before context compaction",
		Description: `Hook entry point for the pre-compaction lifecycle event. Reads the
invocation context from stdin, extracts the conversation from the transcript,
generates a summary (LLM when configured, structured extraction otherwise),
and saves it under the project's .claude/summaries directory.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in := hook.ReadInput(os.Stdin)
			if in.SessionID == "" && in.TranscriptPath == "" {
				return fmt.Errorf("no hook input on stdin")
			}
			if in.TranscriptPath == "" {
				return fmt.Errorf("hook input carries no transcript path")
			}

			records, skipped := transcript.ReadFile(in.TranscriptPath)
			if skipped > 0 {
				log.Warn("skipped malformed transcript lines", "count", skipped)
			}

			ex := extract.Extractor{Cwd: in.CWD}
			content := ex.Extract(records, "")
			meta := in.Metadata(time.Now(), "PreCompact")

			gen := newGenerator(in.CWD)
			summary := gen.Summary(ctx, content, meta)
			enrichMetadata(&meta, content, summary)

			st := store.New(projectRoot(in.CWD), store.Summaries)
			path, err := st.Save(meta.SessionID, summary, meta)
			if err != nil {
				return fmt.Errorf("save summary: %w", err)
			}

			log.Info("summary saved",
				"session", meta.SessionID,
				"trigger", meta.Trigger,
				"messages", content.MessageCount,
				"path", path)
			return nil
		},
	}
}
