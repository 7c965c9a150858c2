package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenningsloy318/context-keeper/core"
)

// testStore opens a store on a temp project root with a deterministic clock
// that advances one second per call, so every save lands in its own version
// directory.
func testStore(t *testing.T, kind Kind) *Store {
	t.Helper()
	st := New(t.TempDir(), kind)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	n := 0
	st.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return st
}

func testMeta(sessionID string) core.Metadata {
	return core.Metadata{
		SessionID:    sessionID,
		CWD:          "/home/dev/proj",
		Trigger:      "auto",
		Timestamp:    "2026-08-20T10:00:00Z",
		MessageCount: 5,
	}
}

func TestSaveAndLoadLatest(t *testing.T) {
	st := testStore(t, Summaries)

	path, err := st.Save("session-a", "# Summary\ncontent body\n", testMeta("session-a"))
	require.NoError(t, err)
	assert.FileExists(t, path)

	art := st.LoadLatest("session-a")
	require.NotNil(t, art)
	assert.Equal(t, "# Summary\ncontent body\n", art.Content)
	assert.Equal(t, "session-a", art.SessionID)
	assert.Equal(t, "2026-08-20T10:00:00Z", art.CreatedAt)
	assert.Equal(t, "auto", art.Trigger)
	assert.Equal(t, 5, art.MessageCount)
}

func TestLoadLatestPrefersLatestPointer(t *testing.T) {
	st := testStore(t, Summaries)

	_, err := st.Save("session-a", "first version", testMeta("session-a"))
	require.NoError(t, err)
	_, err = st.Save("session-a", "second version", testMeta("session-a"))
	require.NoError(t, err)

	art := st.LoadLatest("session-a")
	require.NotNil(t, art)
	assert.Equal(t, "second version", art.Content)
}

func TestLoadLatestFallsBackToIndex(t *testing.T) {
	st := testStore(t, Summaries)

	_, err := st.Save("session-a", "indexed content", testMeta("session-a"))
	require.NoError(t, err)

	// An unknown session has no latest pointer; the global index front wins.
	art := st.LoadLatest("session-z")
	require.NotNil(t, art)
	assert.Equal(t, "indexed content", art.Content)

	assert.Nil(t, testStore(t, Summaries).LoadLatest("anything"),
		"an empty store yields nothing")
}

func TestMemoryEnvelopeRoundTrip(t *testing.T) {
	st := testStore(t, Memories)

	path, err := st.Save("session-a", "# Memory\nwhat happened\n", testMeta("session-a"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var envelope map[string]string
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, "session-a", envelope["session_id"])
	assert.NotEmpty(t, envelope["timestamp"])

	art := st.LoadLatest("session-a")
	require.NotNil(t, art)
	assert.Equal(t, "# Memory\nwhat happened\n", art.Content,
		"the envelope is transparent to readers")
}

func TestFindByIdentifier(t *testing.T) {
	st := testStore(t, Summaries)

	_, err := st.Save("alpha-session", "alpha content", testMeta("alpha-session"))
	require.NoError(t, err)
	_, err = st.Save("beta-session", "beta content", testMeta("beta-session"))
	require.NoError(t, err)

	t.Run("by session prefix", func(t *testing.T) {
		art := st.FindByIdentifier("alpha")
		require.NotNil(t, art)
		assert.Equal(t, "alpha content", art.Content)
	})

	t.Run("by timestamp prefix", func(t *testing.T) {
		art := st.FindByIdentifier("20260820_100002")
		require.NotNil(t, art)
		assert.Equal(t, "beta content", art.Content)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, st.FindByIdentifier("gamma"))
	})
}

func TestList(t *testing.T) {
	st := testStore(t, Summaries)

	for i := 0; i < 3; i++ {
		_, err := st.Save("session-a", "a", testMeta("session-a"))
		require.NoError(t, err)
	}
	_, err := st.Save("session-b", "b", testMeta("session-b"))
	require.NoError(t, err)

	assert.Len(t, st.List(""), 4)
	assert.Len(t, st.List("session-a"), 3)
	assert.Empty(t, st.List("session-z"))
}

func TestIndexBound(t *testing.T) {
	st := testStore(t, Summaries)

	for i := 0; i < maxIndexEntries+5; i++ {
		_, err := st.Save(fmt.Sprintf("session-%03d", i), "content", testMeta("x"))
		require.NoError(t, err)
	}

	idx := st.readIndex()
	entries := idx.entries(Summaries)
	require.Len(t, entries, maxIndexEntries)
	assert.Equal(t, fmt.Sprintf("session-%03d", maxIndexEntries+4), entries[0].SessionID,
		"the index is newest-first and drops the oldest entries")
	assert.Equal(t, entries[0].SessionID, idx.LastSession)
}

func TestCorruptIndexStartsFresh(t *testing.T) {
	st := testStore(t, Summaries)

	require.NoError(t, os.MkdirAll(st.root, 0o755))
	require.NoError(t, os.WriteFile(st.indexPath(), []byte("{not json"), 0o644))

	assert.Empty(t, st.readIndex().entries(Summaries))

	// A save after corruption rebuilds the index from scratch.
	_, err := st.Save("session-a", "content", testMeta("session-a"))
	require.NoError(t, err)
	assert.Len(t, st.List(""), 1)
}

func TestLastCompactionTime(t *testing.T) {
	st := testStore(t, Memories)

	t.Run("transcript boundary wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "t.jsonl")
		line := `{"type":"system","subtype":"compact_boundary","timestamp":"2026-08-20T12:00:00Z"}` + "\n"
		require.NoError(t, os.WriteFile(path, []byte(line), 0o644))

		assert.Equal(t, "2026-08-20T12:00:00Z", st.LastCompactionTime("session-a", path))
	})

	t.Run("latest metadata is the fallback", func(t *testing.T) {
		meta := testMeta("session-a")
		meta.EventEnd = "2026-08-20T11:30:00Z"
		_, err := st.Save("session-a", "m", meta)
		require.NoError(t, err)

		assert.Equal(t, "2026-08-20T11:30:00Z", st.LastCompactionTime("session-a", ""))
	})

	t.Run("nothing known means from the beginning", func(t *testing.T) {
		assert.Empty(t, st.LastCompactionTime("session-never", ""))
	})
}
