package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/jenningsloy318/context-keeper/core"
)

// maxIndexEntries bounds the index to the most recent artifacts. Older
// entries fall off the index but their version directories remain on disk.
const maxIndexEntries = 100

// indexFile is the on-disk index shape. Summary and memory stores keep their
// entries under separate keys so the two families can share a layout without
// colliding.
type indexFile struct {
	Summaries   []core.IndexEntry `json:"summaries,omitempty"`
	Memories    []core.IndexEntry `json:"memories,omitempty"`
	LastSession string            `json:"last_session"`
}

func (f *indexFile) entries(kind Kind) []core.IndexEntry {
	if kind == Memories {
		return f.Memories
	}
	return f.Summaries
}

func (f *indexFile) setEntries(kind Kind, entries []core.IndexEntry) {
	if kind == Memories {
		f.Memories = entries
	} else {
		f.Summaries = entries
	}
}

func (s *Store) indexPath() string {
	return filepath.Join(s.root, "index.json")
}

// readIndex loads the index, treating a missing or unparsable file as empty.
// The index is a cache; corruption discards cached entries, never artifacts.
func (s *Store) readIndex() *indexFile {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		return &indexFile{}
	}
	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn("index unreadable, starting fresh", "path", s.indexPath(), "err", err)
		return &indexFile{}
	}
	return &f
}

// appendIndex prepends an entry, truncates to the bound, and records the
// writing session. Read-modify-write of the whole file: concurrent sessions
// can lose each other's update (last writer wins), but the temp-file rename
// below at least rules out torn index files.
func (s *Store) appendIndex(entry core.IndexEntry) error {
	idx := s.readIndex()

	entries := append([]core.IndexEntry{entry}, idx.entries(s.kind)...)
	if len(entries) > maxIndexEntries {
		entries = entries[:maxIndexEntries]
	}
	idx.setEntries(s.kind, entries)
	idx.LastSession = entry.SessionID

	return s.writeIndex(idx)
}

// writeIndex writes the index atomically via temp file and rename.
func (s *Store) writeIndex(idx *indexFile) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".index-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, s.indexPath())
}
