// Package summarize turns extracted conversation content into a persisted
// summary or memory. The LLM call is a thin external collaborator: when it is
// unavailable or fails, the summary path falls back to a deterministic
// structured extraction and the memory path reports unavailability.
package summarize

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jenningsloy318/context-keeper/core"
	"github.com/jenningsloy318/context-keeper/settings"
)

const (
	defaultSummaryModel = "claude-sonnet-4-20250514"
	defaultMemoryModel  = "claude-3-haiku-20240307"
	defaultMaxTokens    = 4000
	defaultTimeout      = 90 * time.Second
)

// Client is the boundary to the summarization API. Complete returns the
// model's text output for a single prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds the summarization API settings resolved from the environment
// and the host settings files.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

// ConfigFromSettings resolves API configuration: shell environment first,
// settings env section second. CLAUDE_SUMMARY_API_KEY takes precedence over
// the general ANTHROPIC_API_KEY.
func ConfigFromSettings(s *settings.Settings) Config {
	return Config{
		APIKey:    s.Lookup("CLAUDE_SUMMARY_API_KEY", "ANTHROPIC_API_KEY"),
		BaseURL:   s.Lookup("CLAUDE_SUMMARY_API_URL"),
		Model:     s.Lookup("CLAUDE_SUMMARY_MODEL"),
		MaxTokens: defaultMaxTokens,
		Timeout:   defaultTimeout,
	}
}

// Generator produces summaries and memories. The two paths carry separate
// clients because their model defaults differ: summaries default to the
// larger model, memories to the cheaper one. A configured model overrides
// both. Nil clients mean the LLM is unavailable and only local behavior
// remains.
type Generator struct {
	SummaryClient Client
	MemoryClient  Client
}

// New builds a Generator for the given config. When no API key is configured
// the returned generator has no clients and works fallback-only.
func New(cfg Config) *Generator {
	if cfg.APIKey == "" {
		log.Info("no summarization API key found (CLAUDE_SUMMARY_API_KEY or ANTHROPIC_API_KEY)")
		return &Generator{}
	}
	return &Generator{
		SummaryClient: newAPIClient(cfg, defaultSummaryModel),
		MemoryClient:  newAPIClient(cfg, defaultMemoryModel),
	}
}

// Summary generates a session summary: the LLM when available, otherwise the
// structured extraction fallback. Never fails; a network or API error only
// degrades to the fallback.
func (g *Generator) Summary(ctx context.Context, content *core.Content, meta core.Metadata) string {
	if g.SummaryClient != nil {
		text, err := g.SummaryClient.Complete(ctx, summaryPrompt(content, meta))
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			log.Error("LLM summarization failed", "err", err)
		}
	}
	log.Info("using structured extraction (LLM unavailable)")
	return StructuredFallback(content, meta)
}

// Memory generates the two-field memory object. Returns nil when the LLM is
// unavailable or its response cannot be recovered; there is no local
// fallback for memories.
func (g *Generator) Memory(ctx context.Context, content *core.Content, meta core.Metadata) *core.Memory {
	if g.MemoryClient == nil {
		return nil
	}
	text, err := g.MemoryClient.Complete(ctx, memoryPrompt(content, meta))
	if err != nil {
		log.Error("LLM memory generation failed", "err", err)
		return nil
	}
	mem, ok := ParseMemory(text)
	if !ok {
		log.Error("could not recover memory fields from LLM response")
		return nil
	}
	return mem
}
