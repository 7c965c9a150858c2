// Package extract derives summarization input from transcript records: text
// samples by role, tool-call records, modified files, and the session's time
// bounds.
package extract

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/jenningsloy318/context-keeper/core"
)

// systemReminderMarker tags host-injected context inside user messages.
// Samples containing it are dropped whole, never truncated, so injected
// system context is not re-summarized.
const systemReminderMarker = "<system-reminder>"

// mutationTools are the tool names that modify files. Their inputs carry the
// path under file_path (or notebook_path for notebook edits).
var mutationTools = map[string]bool{
	"Edit":         true,
	"Write":        true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

// Extractor walks transcript records and accumulates conversation content.
type Extractor struct {
	// Cwd is the project working directory used to relativize modified file
	// paths. Absolute paths are kept when relativization is not computable.
	Cwd string
}

// Extract builds Content from records. When cutoff is non-empty, records
// whose own timestamp is lexicographically at or before the cutoff are
// skipped; records without a timestamp are always kept. Timestamps are
// ISO-8601, so lexicographic comparison orders them correctly at equal
// precision.
func (e *Extractor) Extract(records []core.Record, cutoff string) *core.Content {
	c := &core.Content{}
	files := make(map[string]bool)

	for _, rec := range records {
		ts := rec.Timestamp
		if cutoff != "" && ts != "" && ts <= cutoff {
			continue
		}
		if ts != "" {
			if c.StartTime == "" || ts < c.StartTime {
				c.StartTime = ts
			}
			if c.EndTime == "" || ts > c.EndTime {
				c.EndTime = ts
			}
		}

		switch rec.ResolvedRole() {
		case "user":
			c.MessageCount++
			for _, b := range rec.Content {
				if b.Type != "text" {
					continue
				}
				if sample, ok := sampleText(b.Text); ok {
					c.UserMessages = append(c.UserMessages, sample)
				}
			}

		case "assistant":
			c.MessageCount++
			for _, b := range rec.Content {
				switch b.Type {
				case "text":
					if sample, ok := sampleText(b.Text); ok {
						c.AssistantMessages = append(c.AssistantMessages, sample)
					}
				case "tool_use":
					e.recordToolCall(c, files, b.Name, b.Input)
				}
			}

		case "tool_use":
			// Older flat format: tool fields at the top level.
			e.recordToolCall(c, files, rec.ToolName, rec.ToolInput)
		}
	}

	for f := range files {
		c.FilesModified = append(c.FilesModified, f)
	}
	sort.Strings(c.FilesModified)
	return c
}

func (e *Extractor) recordToolCall(c *core.Content, files map[string]bool, name string, input map[string]any) {
	if name == "" {
		name = "unknown"
	}
	c.ToolCalls = append(c.ToolCalls, core.ToolCall{Tool: name, Input: input})

	if !mutationTools[name] {
		return
	}
	path, _ := input["file_path"].(string)
	if path == "" {
		path, _ = input["notebook_path"].(string)
	}
	if path == "" {
		return
	}
	files[e.relativize(path)] = true
}

// relativize maps an absolute path under Cwd to a project-relative one,
// keeping the original path whenever relativization is not computable.
func (e *Extractor) relativize(path string) string {
	if e.Cwd == "" {
		return path
	}
	rel, err := filepath.Rel(e.Cwd, path)
	if err != nil {
		return path
	}
	return rel
}

// sampleText filters and truncates one text sample. Empty text and text
// carrying the system-reminder marker are dropped entirely.
func sampleText(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	if strings.Contains(text, systemReminderMarker) {
		return "", false
	}
	return core.Truncate(text, core.SampleLimit), true
}
