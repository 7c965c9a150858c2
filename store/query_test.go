package store

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	st := testStore(t, Summaries)
	for _, sid := range []string{"alpha-session", "beta-session", "alpha-session"} {
		_, err := st.Save(sid, "content", testMeta(sid))
		require.NoError(t, err)
	}
	return st
}

func TestGjsonQuerier(t *testing.T) {
	st := seededStore(t)
	q := gjsonQuerier{}

	t.Run("latest is the index front", func(t *testing.T) {
		entry, ok := q.Latest(st.indexPath(), Summaries)
		require.True(t, ok)
		assert.Equal(t, "alpha-session", entry.SessionID)
		assert.Equal(t, "20260820_100003", entry.Timestamp)
	})

	t.Run("find by prefix", func(t *testing.T) {
		entry, ok := q.Find(st.indexPath(), Summaries, "beta")
		require.True(t, ok)
		assert.Equal(t, "beta-session", entry.SessionID)

		_, ok = q.Find(st.indexPath(), Summaries, "gamma")
		assert.False(t, ok)
	})

	t.Run("list with filter", func(t *testing.T) {
		assert.Len(t, q.List(st.indexPath(), Summaries, ""), 3)
		assert.Len(t, q.List(st.indexPath(), Summaries, "alpha"), 2)
	})

	t.Run("missing index", func(t *testing.T) {
		_, ok := q.Latest("/nonexistent/index.json", Summaries)
		assert.False(t, ok)
	})
}

// The jq querier must agree with the in-process one on the same index.
func TestQuerierParity(t *testing.T) {
	if _, err := exec.LookPath("jq"); err != nil {
		t.Skip("jq not installed")
	}

	st := seededStore(t)
	jq := &jqQuerier{fallback: gjsonQuerier{}}
	gj := gjsonQuerier{}

	jqLatest, ok1 := jq.Latest(st.indexPath(), Summaries)
	gjLatest, ok2 := gj.Latest(st.indexPath(), Summaries)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, gjLatest, jqLatest)

	jqFound, ok1 := jq.Find(st.indexPath(), Summaries, "beta")
	gjFound, ok2 := gj.Find(st.indexPath(), Summaries, "beta")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, gjFound, jqFound)

	assert.Equal(t,
		gj.List(st.indexPath(), Summaries, "alpha"),
		jq.List(st.indexPath(), Summaries, "alpha"))
}

func TestJqQuerierFallsBack(t *testing.T) {
	st := seededStore(t)
	jq := &jqQuerier{fallback: gjsonQuerier{}}

	// Even when the subprocess cannot run, results still come back through
	// the in-process path.
	entry, ok := jq.Latest(st.indexPath(), Summaries)
	require.True(t, ok)
	assert.Equal(t, "alpha-session", entry.SessionID)
}
