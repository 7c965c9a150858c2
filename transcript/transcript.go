// Package transcript reads session transcript files (JSONL, one message per
// line) into normalized records. Malformed lines are logged and skipped; a
// missing file is "nothing to summarize", never an error.
package transcript

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jenningsloy318/context-keeper/core"
)

// maxLineSize is the maximum JSONL line size (1 MB). Tool results can exceed
// the default 64 KB bufio.Scanner buffer.
const maxLineSize = 1 << 20

// Raw JSON deserialization types. These mirror the JSONL structure on disk.

type rawLine struct {
	Type      string          `json:"type"`
	Subtype   string          `json:"subtype"`
	Timestamp string          `json:"timestamp"`
	CreatedAt string          `json:"created_at"`
	Message   json.RawMessage `json:"message"`
	Content   json.RawMessage `json:"content"` // old format: top-level content
	Name      string          `json:"name"`    // old format: top-level tool_use
	Input     map[string]any  `json:"input"`
}

type rawMessage struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Timestamp string          `json:"timestamp"`
	CreatedAt string          `json:"created_at"`
}

type rawBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// ReadFile parses a transcript file into records, returning the records and
// the number of lines skipped as malformed. A missing or unreadable file
// yields no records; the error is logged, not returned.
func ReadFile(path string) ([]core.Record, int) {
	f, err := os.Open(path)
	if err != nil {
		log.Error("transcript not readable", "path", path, "err", err)
		return nil, 0
	}
	defer f.Close()

	return scanRecords(f)
}

// scanRecords reads JSONL lines into records, counting malformed lines.
func scanRecords(r io.Reader) ([]core.Record, int) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)

	var records []core.Record
	skipped := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var raw rawLine
		if err := json.Unmarshal(line, &raw); err != nil {
			log.Warn("skipping malformed transcript line", "line", lineNum, "err", err)
			skipped++
			continue
		}
		records = append(records, mapRecord(raw))
	}
	if err := scanner.Err(); err != nil {
		log.Error("transcript scan aborted", "line", lineNum, "err", err)
	}
	return records, skipped
}

// mapRecord normalizes one raw line into a core.Record, decoding the nested
// message object when present and falling back to top-level fields for the
// older flat format.
func mapRecord(raw rawLine) core.Record {
	rec := core.Record{
		Type:      raw.Type,
		Subtype:   raw.Subtype,
		ToolName:  raw.Name,
		ToolInput: raw.Input,
	}

	var msg rawMessage
	hasMsg := false
	if len(raw.Message) > 0 && string(raw.Message) != "null" {
		if err := json.Unmarshal(raw.Message, &msg); err == nil {
			hasMsg = true
		}
	}

	rec.Timestamp = firstNonEmpty(raw.CreatedAt, raw.Timestamp, msg.CreatedAt, msg.Timestamp)

	if hasMsg {
		rec.Role = msg.Role
		rec.Content = normalizeContent(msg.Content)
	} else {
		rec.Content = normalizeContent(raw.Content)
	}
	return rec
}

// normalizeContent maps message content to blocks. Content is either a plain
// string (one text block) or an array of typed blocks, of which only text and
// tool_use survive.
func normalizeContent(raw json.RawMessage) []core.Block {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return []core.Block{{Type: "text", Text: s}}
	}

	var rawBlocks []rawBlock
	if err := json.Unmarshal(raw, &rawBlocks); err != nil {
		return nil
	}

	var blocks []core.Block
	for _, b := range rawBlocks {
		switch b.Type {
		case "text":
			blocks = append(blocks, core.Block{Type: "text", Text: b.Text})
		case "tool_use":
			blocks = append(blocks, core.Block{Type: "tool_use", Name: b.Name, Input: b.Input})
		}
	}
	return blocks
}

// LastCompaction scans a transcript for compaction-boundary markers and
// returns the latest such timestamp, or "" when the session has never been
// compacted. Two marker shapes exist: system records with a compact_boundary
// subtype, and local-command stdout lines reporting "Compacted".
func LastCompaction(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)

	var found []string
	for scanner.Scan() {
		line := scanner.Text()
		isBoundary := strings.Contains(line, `"subtype":"compact_boundary"`) ||
			strings.Contains(line, `"subtype": "compact_boundary"`)
		isStdoutMarker := strings.Contains(line, "Compacted") &&
			strings.Contains(line, "<local-command-stdout>")
		if !isBoundary && !isStdoutMarker {
			continue
		}
		var raw rawLine
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			continue
		}
		if ts := firstNonEmpty(raw.Timestamp, raw.CreatedAt); ts != "" {
			found = append(found, ts)
		}
	}

	if len(found) == 0 {
		return ""
	}
	sort.Sort(sort.Reverse(sort.StringSlice(found)))
	return found[0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
