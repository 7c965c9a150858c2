package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenningsloy318/context-keeper/core"
)

func userRecord(ts, text string) core.Record {
	return core.Record{
		Type:      "user",
		Timestamp: ts,
		Content:   []core.Block{{Type: "text", Text: text}},
	}
}

func assistantRecord(ts string, blocks ...core.Block) core.Record {
	return core.Record{Type: "assistant", Timestamp: ts, Content: blocks}
}

func TestExtractConversation(t *testing.T) {
	e := &Extractor{Cwd: "/home/dev/proj"}
	records := []core.Record{
		userRecord("2026-08-20T10:00:00Z", "fix the login bug"),
		assistantRecord("2026-08-20T10:00:05Z",
			core.Block{Type: "text", Text: "On it."},
			core.Block{Type: "tool_use", Name: "Edit", Input: map[string]any{
				"file_path": "/home/dev/proj/auth/login.go",
			}},
		),
	}

	c := e.Extract(records, "")

	assert.Equal(t, 2, c.MessageCount, "tool-use-only turns still count as messages")
	assert.Equal(t, []string{"fix the login bug"}, c.UserMessages)
	assert.Equal(t, []string{"On it."}, c.AssistantMessages)
	require.Len(t, c.ToolCalls, 1)
	assert.Equal(t, "Edit", c.ToolCalls[0].Tool)
	assert.Equal(t, []string{"auth/login.go"}, c.FilesModified, "paths under cwd are relativized")
	assert.Equal(t, "2026-08-20T10:00:00Z", c.StartTime)
	assert.Equal(t, "2026-08-20T10:00:05Z", c.EndTime)
}

func TestExtractCutoff(t *testing.T) {
	e := &Extractor{}
	records := []core.Record{
		userRecord("2026-08-20T10:00:00Z", "old message"),
		userRecord("2026-08-20T11:00:00Z", "newer message"),
		userRecord("", "timeless message"),
	}

	t.Run("records at or before the cutoff are skipped", func(t *testing.T) {
		c := e.Extract(records, "2026-08-20T10:00:00Z")
		assert.Equal(t, []string{"newer message", "timeless message"}, c.UserMessages)
	})

	t.Run("cutoff at the latest timestamp leaves only timeless records", func(t *testing.T) {
		c := e.Extract(records, "2026-08-20T11:00:00Z")
		assert.Equal(t, []string{"timeless message"}, c.UserMessages)
		assert.Equal(t, 1, c.MessageCount)
	})
}

func TestExtractDropsSystemReminders(t *testing.T) {
	e := &Extractor{}
	records := []core.Record{
		userRecord("", "real question"),
		userRecord("", "<system-reminder>injected context</system-reminder> plus trailing text"),
	}

	c := e.Extract(records, "")

	assert.Equal(t, []string{"real question"}, c.UserMessages,
		"samples carrying the reminder marker are dropped whole")
	assert.Equal(t, 2, c.MessageCount)
}

func TestExtractTruncatesSamples(t *testing.T) {
	e := &Extractor{}
	long := strings.Repeat("x", core.SampleLimit+500)

	c := e.Extract([]core.Record{userRecord("", long)}, "")

	require.Len(t, c.UserMessages, 1)
	assert.Len(t, c.UserMessages[0], core.SampleLimit)
}

func TestExtractTruncationKeepsValidUTF8(t *testing.T) {
	e := &Extractor{}
	// The byte at the cap lands inside a multi-byte rune.
	long := strings.Repeat("x", core.SampleLimit-1) + "世界"

	c := e.Extract([]core.Record{userRecord("", long)}, "")

	require.Len(t, c.UserMessages, 1)
	sample := c.UserMessages[0]
	assert.True(t, utf8.ValidString(sample))
	assert.Equal(t, strings.Repeat("x", core.SampleLimit-1), sample)
}

func TestExtractToolEdgeCases(t *testing.T) {
	e := &Extractor{Cwd: "/home/dev/proj"}
	records := []core.Record{
		assistantRecord("",
			core.Block{Type: "tool_use", Input: map[string]any{"cmd": "ls"}},
			core.Block{Type: "tool_use", Name: "NotebookEdit", Input: map[string]any{
				"notebook_path": "/home/dev/proj/analysis.ipynb",
			}},
			core.Block{Type: "tool_use", Name: "Read", Input: map[string]any{
				"file_path": "/home/dev/proj/readme.md",
			}},
		),
		// Older flat format: tool fields at the record's top level.
		{Type: "tool_use", ToolName: "Write", ToolInput: map[string]any{
			"file_path": "/home/dev/proj/notes.md",
		}},
	}

	c := e.Extract(records, "")

	require.Len(t, c.ToolCalls, 4)
	assert.Equal(t, "unknown", c.ToolCalls[0].Tool)
	assert.Equal(t, []string{"analysis.ipynb", "notes.md"}, c.FilesModified,
		"only mutation tools contribute modified files, sorted")
}
