// Package nowledge pushes distilled session memories to the local Nowledge
// knowledge store over its REST API. The push is best effort: one attempt,
// short timeout, and callers treat failure as a log line, never an exit code.
// The local memory artifact is the durable record; this is a replica.
package nowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jenningsloy318/context-keeper/core"
)

// DefaultURL is the local Nowledge memories endpoint.
const DefaultURL = "http://127.0.0.1:14242/memories"

const requestTimeout = 5 * time.Second

// Client posts memories to one Nowledge endpoint.
type Client struct {
	URL string

	http *http.Client
}

// New returns a client for the default local endpoint.
func New() *Client {
	return &Client{URL: DefaultURL}
}

// payload is the memory-creation request body.
type payload struct {
	Content    string        `json:"content"`
	Title      string        `json:"title"`
	Importance float64       `json:"importance"`
	Confidence float64       `json:"confidence"`
	Labels     []string      `json:"labels"`
	EventStart string        `json:"event_start,omitempty"`
	EventEnd   string        `json:"event_end,omitempty"`
	Metadata   core.Metadata `json:"metadata"`
}

// Push sends the distilled memory. When the distilled field is empty the full
// memory is sent instead, so a recovery that only salvaged full_memory still
// reaches the store.
func (c *Client) Push(mem *core.Memory, meta core.Metadata) error {
	content := mem.Distilled
	if content == "" {
		log.Warn("no distilled summary in memory, sending full memory instead")
		content = mem.Full
	}

	body, err := json.Marshal(payload{
		Content:    content,
		Title:      title(meta),
		Importance: 0.7,
		Confidence: 1.0,
		Labels:     labels(meta),
		EventStart: meta.EventStart,
		EventEnd:   meta.EventEnd,
		Metadata:   meta,
	})
	if err != nil {
		return fmt.Errorf("marshal memory payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.http
	if hc == nil {
		hc = &http.Client{Timeout: requestTimeout}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("knowledge store returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func title(meta core.Metadata) string {
	subject := "Update"
	if len(meta.Topics) > 0 {
		subject = strings.Join(firstN(meta.Topics, 3), ", ")
	}
	return fmt.Sprintf("Session %s: %s", meta.SessionID, subject)
}

// labels tag the memory for retrieval: fixed markers, the project name, and
// the leading topics.
func labels(meta core.Metadata) []string {
	projectName := "unknown-project"
	if meta.CWD != "" && meta.CWD != "unknown" {
		projectName = filepath.Base(meta.CWD)
	}

	candidates := append([]string{"claude-context", "session-summary", projectName},
		firstN(meta.Topics, 5)...)
	out := make([]string, 0, len(candidates))
	for _, l := range candidates {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
