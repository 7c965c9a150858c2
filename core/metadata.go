package core

// Metadata is the sidecar object persisted next to every artifact. It carries
// the hook invocation context plus denormalized counts so listing tools never
// need to re-read transcripts.
type Metadata struct {
	SessionID          string   `json:"session_id"`
	CWD                string   `json:"cwd"`
	Trigger            string   `json:"trigger"`
	PermissionMode     string   `json:"permission_mode"`
	HookEvent          string   `json:"hook_event_name"`
	Timestamp          string   `json:"timestamp"` // creation time, ISO-8601 with zone
	CustomInstructions string   `json:"custom_instructions,omitempty"`
	Topics             []string `json:"topics"`
	FilesModified      []string `json:"files_modified"`
	MessageCount       int      `json:"message_count"`
	ToolCallCount      int      `json:"tool_call_count"`
	EventStart         string   `json:"event_start,omitempty"` // earliest message in the summarized window
	EventEnd           string   `json:"event_end,omitempty"`   // latest message in the summarized window

	// ArtifactTimestamp is the version directory name (YYYYMMDD_HHMMSS),
	// filled in by the store at save time.
	ArtifactTimestamp string `json:"artifact_timestamp,omitempty"`
}

// IndexEntry is one row of the bounded artifact index: the (session_id,
// timestamp) key, the relative artifact path, and enough denormalized
// metadata for listing without opening artifact files.
type IndexEntry struct {
	SessionID    string `json:"session_id"`
	Timestamp    string `json:"timestamp"`  // version directory name
	CreatedAt    string `json:"created_at"` // metadata creation time
	Trigger      string `json:"trigger"`
	Project      string `json:"project"`
	MessageCount int    `json:"message_count"`
	Path         string `json:"path"` // artifact path relative to the store root
}

// Memory is the two-field shape requested from the LLM for memory
// generation: a short distilled variant for remote knowledge stores and the
// full markdown report persisted locally.
type Memory struct {
	Distilled string `json:"nowledge_summary"`
	Full      string `json:"full_memory"`
}
