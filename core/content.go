package core

import "unicode/utf8"

// ToolCall records a single tool invocation observed in a transcript.
type ToolCall struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

// Content is the conversation content extracted from a transcript for one
// summarization pass. Built once per invocation and discarded after the
// summary is generated.
type Content struct {
	UserMessages      []string   // text samples, each truncated to SampleLimit
	AssistantMessages []string   // same truncation
	ToolCalls         []ToolCall // in transcript order
	FilesModified     []string   // deduplicated, relative to cwd where possible
	MessageCount      int        // user + assistant messages after cutoff
	StartTime         string     // min observed timestamp, "" if none
	EndTime           string     // max observed timestamp, "" if none
}

// SampleLimit is the per-sample character cap applied to extracted text.
// A token-budget control for the downstream summarization call; the raw
// transcript remains the source for full text.
const SampleLimit = 2000

// Truncate cuts s to at most limit bytes, backing off to the previous rune
// boundary so the result is always valid UTF-8.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
