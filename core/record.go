// Package core defines the shared data model for session context capture:
// transcript records, extracted conversation content, artifact metadata, and
// index entries. Transcript readers produce records; the extractor, the
// summarizer, and the artifact store all consume these types.
package core

// Record is one line of a session transcript, decoded once at the boundary.
// The JSONL format has evolved: newer lines nest role and content under a
// message object, older lines carry them at the top level. Readers normalize
// both shapes into this struct so downstream code never re-inspects raw JSON.
type Record struct {
	Type      string // "user", "assistant", "tool_use", "system", ...
	Subtype   string // e.g. "compact_boundary" on system records
	Timestamp string // ISO-8601; first of created_at/timestamp, outer then nested
	Role      string // nested message.role, if present
	Content   []Block

	// Set for old-format top-level tool_use records.
	ToolName  string
	ToolInput map[string]any
}

// Block is one piece of message content. Plain-string content is normalized
// into a single text block by the reader.
type Block struct {
	Type  string // "text" or "tool_use"; other kinds are dropped at decode
	Text  string
	Name  string         // tool name, set for "tool_use"
	Input map[string]any // tool input params, set for "tool_use"
}

// ResolvedRole returns the logical role of a record, preferring the top-level
// type and falling back to the nested message role.
func (r Record) ResolvedRole() string {
	switch r.Type {
	case "user", "assistant", "tool_use":
		return r.Type
	}
	switch r.Role {
	case "user", "assistant":
		return r.Role
	}
	return ""
}
