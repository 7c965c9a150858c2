// Package hook implements the host's lifecycle hook protocol: the JSON
// invocation context arriving on stdin, and the context block the read-side
// hooks print to stdout for injection into a new session.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jenningsloy318/context-keeper/core"
)

// Input is the invocation context the host writes to stdin at each lifecycle
// point.
type Input struct {
	SessionID          string `json:"session_id"`
	TranscriptPath     string `json:"transcript_path"`
	CWD                string `json:"cwd"`
	Trigger            string `json:"trigger"` // manual or auto, on pre-compaction hooks
	Source             string `json:"source"`  // startup, resume, clear, compact, on session-start hooks
	PermissionMode     string `json:"permission_mode"`
	HookEventName      string `json:"hook_event_name"`
	CustomInstructions string `json:"custom_instructions"`
}

// ReadInput decodes the hook input. Empty or malformed input yields a zero
// Input, never an error; the caller decides whether required fields are
// missing.
func ReadInput(r io.Reader) Input {
	var in Input
	data, err := io.ReadAll(r)
	if err != nil {
		log.Error("read hook input", "err", err)
		return in
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return in
	}
	if err := json.Unmarshal(data, &in); err != nil {
		log.Error("parse hook input", "err", err)
	}
	return in
}

// Metadata builds the artifact metadata for this invocation, filling the
// defaults the host omits.
func (in Input) Metadata(now time.Time, defaultEvent string) core.Metadata {
	meta := core.Metadata{
		SessionID:          in.SessionID,
		CWD:                in.CWD,
		Trigger:            in.Trigger,
		PermissionMode:     in.PermissionMode,
		HookEvent:          in.HookEventName,
		Timestamp:          now.Format(time.RFC3339),
		CustomInstructions: in.CustomInstructions,
	}
	if meta.SessionID == "" {
		meta.SessionID = "unknown"
	}
	if meta.Trigger == "" {
		meta.Trigger = "unknown"
	}
	if meta.PermissionMode == "" {
		meta.PermissionMode = "default"
	}
	if meta.HookEvent == "" {
		meta.HookEvent = defaultEvent
	}
	return meta
}

// staleAfter is the freshness window for context injection: artifacts older
// than this are skipped, not errors.
const staleAfter = 24 * time.Hour

// IsStale reports whether an artifact created at the given ISO timestamp is
// too old to inject. Unparsable timestamps count as fresh.
func IsStale(createdAt string, now time.Time) bool {
	if createdAt == "" {
		return false
	}
	t, ok := parseISO(createdAt)
	if !ok {
		return false
	}
	return now.Sub(t) > staleAfter
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatContext wraps an artifact body in the injection envelope the host
// feeds into the new session as context.
func FormatContext(body string, sessionID, createdAt, trigger string, messageCount int, source, permissionMode string) string {
	return fmt.Sprintf(`<previous-session-context>
## Session Continuity Notice

This context was automatically loaded from a previous session.
- **Previous Session ID:** %s
- **Summary Created:** %s
- **Compaction Trigger:** %s
- **Message Count:** %d
- **Reload Source:** %s
- **Permission Mode:** %s

---

%s

---

*Use this context to maintain continuity with the previous conversation. The above content captures what was discussed and accomplished before context compaction.*
</previous-session-context>`,
		shortID(sessionID), orUnknown(createdAt), orUnknown(trigger),
		messageCount, orUnknown(source), orDefault(permissionMode), body)
}

func shortID(id string) string {
	if id == "" {
		return "unknown"
	}
	if len(id) > 16 {
		return id[:16] + "..."
	}
	return id
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}
