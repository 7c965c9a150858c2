package summarize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenningsloy318/context-keeper/core"
)

type stubClient struct {
	text string
	err  error
}

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	content := &core.Content{UserMessages: []string{"hello"}, MessageCount: 1}
	meta := core.Metadata{SessionID: "s1"}

	t.Run("uses the client's output", func(t *testing.T) {
		g := &Generator{SummaryClient: &stubClient{text: "## Model Summary"}}
		assert.Equal(t, "## Model Summary", g.Summary(ctx, content, meta))
	})

	t.Run("falls back on client error", func(t *testing.T) {
		g := &Generator{SummaryClient: &stubClient{err: errors.New("api down")}}
		assert.Contains(t, g.Summary(ctx, content, meta), "Structured Extraction")
	})

	t.Run("falls back without a client", func(t *testing.T) {
		g := &Generator{}
		assert.Contains(t, g.Summary(ctx, content, meta), "Structured Extraction")
	})
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	content := &core.Content{MessageCount: 1}
	meta := core.Metadata{SessionID: "s1"}

	t.Run("parses the client's JSON", func(t *testing.T) {
		g := &Generator{MemoryClient: &stubClient{
			text: `{"nowledge_summary": "distilled", "full_memory": "full"}`,
		}}
		mem := g.Memory(ctx, content, meta)
		require.NotNil(t, mem)
		assert.Equal(t, "distilled", mem.Distilled)
		assert.Equal(t, "full", mem.Full)
	})

	t.Run("no client means no memory", func(t *testing.T) {
		g := &Generator{}
		assert.Nil(t, g.Memory(ctx, content, meta))
	})

	t.Run("client error means no memory", func(t *testing.T) {
		g := &Generator{MemoryClient: &stubClient{err: errors.New("api down")}}
		assert.Nil(t, g.Memory(ctx, content, meta))
	})

	t.Run("unrecoverable response means no memory", func(t *testing.T) {
		g := &Generator{MemoryClient: &stubClient{text: "I cannot help with that."}}
		assert.Nil(t, g.Memory(ctx, content, meta))
	})
}

func TestNewWithoutKey(t *testing.T) {
	g := New(Config{})
	assert.Nil(t, g.SummaryClient)
	assert.Nil(t, g.MemoryClient)
}

// Each generation path carries its own model default; a configured model
// overrides both.
func TestNewPerPathModels(t *testing.T) {
	t.Run("defaults differ per path", func(t *testing.T) {
		g := New(Config{APIKey: "k"})

		summary, ok := g.SummaryClient.(*apiClient)
		require.True(t, ok)
		memory, ok := g.MemoryClient.(*apiClient)
		require.True(t, ok)

		assert.Equal(t, defaultSummaryModel, summary.model)
		assert.Equal(t, defaultMemoryModel, memory.model)
	})

	t.Run("configured model wins on both paths", func(t *testing.T) {
		g := New(Config{APIKey: "k", Model: "claude-custom"})

		assert.Equal(t, "claude-custom", g.SummaryClient.(*apiClient).model)
		assert.Equal(t, "claude-custom", g.MemoryClient.(*apiClient).model)
	})
}
