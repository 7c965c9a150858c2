package nowledge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenningsloy318/context-keeper/core"
)

func testMeta() core.Metadata {
	return core.Metadata{
		SessionID:  "abc-123",
		CWD:        "/home/dev/proj",
		Topics:     []string{"auth", "storage", "cli", "tests", "logging", "extra"},
		EventStart: "2026-08-20T10:00:00Z",
		EventEnd:   "2026-08-20T11:00:00Z",
	}
}

func TestPush(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &Client{URL: srv.URL}
	mem := &core.Memory{Distilled: "distilled summary", Full: "full report"}
	require.NoError(t, c.Push(mem, testMeta()))

	assert.Equal(t, "distilled summary", got.Content, "the distilled field is what gets replicated")
	assert.Equal(t, "Session abc-123: auth, storage, cli", got.Title)
	assert.Equal(t,
		[]string{"claude-context", "session-summary", "proj", "auth", "storage", "cli", "tests", "logging"},
		got.Labels)
	assert.Equal(t, "2026-08-20T10:00:00Z", got.EventStart)
	assert.Equal(t, "2026-08-20T11:00:00Z", got.EventEnd)
	assert.Equal(t, "abc-123", got.Metadata.SessionID)
	assert.InDelta(t, 0.7, got.Importance, 0.001)
}

func TestPushFallsBackToFullMemory(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c := &Client{URL: srv.URL}
	require.NoError(t, c.Push(&core.Memory{Full: "only the full report"}, testMeta()))

	assert.Equal(t, "only the full report", got.Content)
}

func TestPushErrors(t *testing.T) {
	t.Run("server error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := &Client{URL: srv.URL}
		err := c.Push(&core.Memory{Distilled: "d"}, testMeta())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 500")
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := &Client{URL: srv.URL}
		assert.Error(t, c.Push(&core.Memory{Distilled: "d"}, testMeta()))
	})
}

func TestTitleWithoutTopics(t *testing.T) {
	meta := testMeta()
	meta.Topics = nil
	assert.Equal(t, "Session abc-123: Update", title(meta))
}

func TestLabelsUnknownProject(t *testing.T) {
	meta := testMeta()
	meta.CWD = "unknown"
	meta.Topics = nil
	assert.Equal(t, []string{"claude-context", "session-summary", "unknown-project"}, labels(meta))
}
