// Package store persists summary and memory artifacts under a project's
// .claude directory: timestamped version directories per session, a "latest"
// symlink per session, and a bounded global index for fast listing. Artifact
// directories are the source of truth; the index is a rebuildable cache.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jenningsloy318/context-keeper/core"
	"github.com/jenningsloy318/context-keeper/transcript"
)

// Kind selects which artifact family a Store manages.
type Kind string

const (
	Summaries Kind = "summaries" // summary.md artifacts
	Memories  Kind = "memories"  // memory.json artifacts
)

// artifactName is the content file inside each version directory.
func (k Kind) artifactName() string {
	if k == Memories {
		return "memory.json"
	}
	return "summary.md"
}

// versionFormat is the version directory name layout: local time at second
// granularity.
const versionFormat = "20060102_150405"

// Store reads and writes one artifact family for one project.
type Store struct {
	root    string // <project>/.claude/<kind>
	kind    Kind
	querier Querier
	now     func() time.Time
}

// New opens the store for the given project root. The index querier is
// selected once here: jq when available on PATH, the in-process
// implementation otherwise.
func New(projectRoot string, kind Kind) *Store {
	return &Store{
		root:    filepath.Join(projectRoot, ".claude", string(kind)),
		kind:    kind,
		querier: NewQuerier(),
		now:     time.Now,
	}
}

// Root returns the store's base directory.
func (s *Store) Root() string { return s.root }

// memoryFile is the on-disk shape of memory.json.
type memoryFile struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id"`
}

// Save writes a new artifact version: content plus metadata.json under a
// fresh timestamp directory, the refreshed latest symlink, and a new front
// entry in the index. Returns the artifact path. Symlink and index failures
// degrade (logged) rather than fail the save; the version directory is the
// durable record.
func (s *Store) Save(sessionID, content string, meta core.Metadata) (string, error) {
	version := s.now().Format(versionFormat)
	dir := filepath.Join(s.root, sessionID, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}

	artifactPath := filepath.Join(dir, s.kind.artifactName())
	if err := s.writeArtifact(artifactPath, sessionID, version, content); err != nil {
		return "", err
	}

	meta.ArtifactTimestamp = version
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), append(metaData, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	s.replaceLatest(sessionID, version)

	if err := s.appendIndex(core.IndexEntry{
		SessionID:    sessionID,
		Timestamp:    version,
		CreatedAt:    meta.Timestamp,
		Trigger:      meta.Trigger,
		Project:      meta.CWD,
		MessageCount: meta.MessageCount,
		Path:         filepath.Join(sessionID, version, s.kind.artifactName()),
	}); err != nil {
		log.Error("index update failed", "err", err)
	}

	return artifactPath, nil
}

func (s *Store) writeArtifact(path, sessionID, version, content string) error {
	if s.kind == Memories {
		data, err := json.MarshalIndent(memoryFile{
			Content:   content,
			Timestamp: version,
			SessionID: sessionID,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal memory: %w", err)
		}
		content = string(data) + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// replaceLatest swaps the per-session latest symlink to the new version.
// A convenience pointer only: platforms without symlink support just log.
func (s *Store) replaceLatest(sessionID, version string) {
	link := filepath.Join(s.root, sessionID, "latest")
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		log.Error("remove stale latest pointer", "err", err)
		return
	}
	if err := os.Symlink(version, link); err != nil {
		log.Error("create latest symlink", "err", err)
	}
}

// Artifact is a loaded artifact plus the metadata the read side needs.
type Artifact struct {
	Content       string
	SessionID     string
	CreatedAt     string // metadata creation time, ISO-8601
	Trigger       string
	MessageCount  int
	FilesModified []string
}

// LoadLatest returns the most recent artifact: the session's latest pointer
// when a session ID is given and resolvable, otherwise the front entry of
// the global index. Returns nil when nothing is found; lookup never fails.
func (s *Store) LoadLatest(sessionID string) *Artifact {
	if sessionID != "" {
		if a := s.loadFromLatestPointer(sessionID); a != nil {
			return a
		}
	}

	entry, ok := s.querier.Latest(s.indexPath(), s.kind)
	if !ok {
		return nil
	}
	return s.loadEntry(entry)
}

func (s *Store) loadFromLatestPointer(sessionID string) *Artifact {
	dir := filepath.Join(s.root, sessionID, "latest")
	content, ok := s.readContent(filepath.Join(dir, s.kind.artifactName()))
	if !ok {
		return nil
	}

	a := &Artifact{Content: content, SessionID: sessionID}
	var meta core.Metadata
	if data, err := os.ReadFile(filepath.Join(dir, "metadata.json")); err == nil {
		if err := json.Unmarshal(data, &meta); err == nil {
			a.CreatedAt = meta.Timestamp
			a.Trigger = meta.Trigger
			a.MessageCount = meta.MessageCount
			a.FilesModified = meta.FilesModified
		}
	}
	return a
}

// FindByIdentifier returns the first index entry whose session ID or
// timestamp starts with the given prefix. The index is newest-first, so the
// most recent match wins.
func (s *Store) FindByIdentifier(prefix string) *Artifact {
	entry, ok := s.querier.Find(s.indexPath(), s.kind, prefix)
	if !ok {
		return nil
	}
	return s.loadEntry(entry)
}

// List returns index entries, optionally filtered by session ID prefix.
func (s *Store) List(sessionFilter string) []core.IndexEntry {
	return s.querier.List(s.indexPath(), s.kind, sessionFilter)
}

func (s *Store) loadEntry(entry *core.IndexEntry) *Artifact {
	content, ok := s.readContent(filepath.Join(s.root, entry.Path))
	if !ok {
		return nil
	}
	return &Artifact{
		Content:      content,
		SessionID:    entry.SessionID,
		CreatedAt:    entry.CreatedAt,
		Trigger:      entry.Trigger,
		MessageCount: entry.MessageCount,
	}
}

// readContent loads an artifact file. Memory artifacts are JSON envelopes;
// when the envelope does not parse the raw bytes are returned as-is, which
// covers artifacts written before the JSON format.
func (s *Store) readContent(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if s.kind == Memories {
		var mf memoryFile
		if err := json.Unmarshal(data, &mf); err == nil {
			return mf.Content, true
		}
	}
	return string(data), true
}

// LastCompactionTime supports incremental summarization. The transcript's
// own compaction-boundary markers are preferred; the latest saved metadata
// is the fallback. Empty string means "summarize from the beginning".
func (s *Store) LastCompactionTime(sessionID, transcriptPath string) string {
	if transcriptPath != "" {
		if ts := transcript.LastCompaction(transcriptPath); ts != "" {
			return ts
		}
	}

	data, err := os.ReadFile(filepath.Join(s.root, sessionID, "latest", "metadata.json"))
	if err != nil {
		return ""
	}
	var meta core.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return ""
	}
	if meta.EventEnd != "" {
		return meta.EventEnd
	}
	return meta.Timestamp
}
