package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jenningsloy318/context-keeper/core"
)

// Querier answers read-side questions against the index file. Two
// implementations exist: one shells out to jq so large indexes never need a
// full in-process decode, the other parses in process with gjson. Both
// produce identical results; the jq querier delegates to the in-process one
// whenever the subprocess is unavailable or fails.
type Querier interface {
	// Latest returns the front (most recent) index entry.
	Latest(indexPath string, kind Kind) (*core.IndexEntry, bool)

	// Find returns the first entry whose session ID or timestamp starts
	// with prefix.
	Find(indexPath string, kind Kind, prefix string) (*core.IndexEntry, bool)

	// List returns entries in index order, optionally filtered by session
	// ID prefix.
	List(indexPath string, kind Kind, sessionFilter string) []core.IndexEntry
}

// NewQuerier selects the implementation once at startup: jq when present on
// PATH, in-process otherwise.
func NewQuerier() Querier {
	if _, err := exec.LookPath("jq"); err == nil {
		return &jqQuerier{fallback: gjsonQuerier{}}
	}
	return gjsonQuerier{}
}

// gjsonQuerier is the pure in-process implementation.
type gjsonQuerier struct{}

func (gjsonQuerier) Latest(indexPath string, kind Kind) (*core.IndexEntry, bool) {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, false
	}
	return decodeEntry(gjson.GetBytes(data, string(kind)+".0"))
}

func (gjsonQuerier) Find(indexPath string, kind Kind, prefix string) (*core.IndexEntry, bool) {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, false
	}
	for _, item := range gjson.GetBytes(data, string(kind)).Array() {
		if strings.HasPrefix(item.Get("session_id").String(), prefix) ||
			strings.HasPrefix(item.Get("timestamp").String(), prefix) {
			return decodeEntry(item)
		}
	}
	return nil, false
}

func (gjsonQuerier) List(indexPath string, kind Kind, sessionFilter string) []core.IndexEntry {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil
	}
	var entries []core.IndexEntry
	for _, item := range gjson.GetBytes(data, string(kind)).Array() {
		if sessionFilter != "" && !strings.HasPrefix(item.Get("session_id").String(), sessionFilter) {
			continue
		}
		if e, ok := decodeEntry(item); ok {
			entries = append(entries, *e)
		}
	}
	return entries
}

func decodeEntry(result gjson.Result) (*core.IndexEntry, bool) {
	if !result.Exists() || result.Type == gjson.Null {
		return nil, false
	}
	var entry core.IndexEntry
	if err := json.Unmarshal([]byte(result.Raw), &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

// jqQuerier runs jq against the index file, falling back in process on any
// subprocess failure.
type jqQuerier struct {
	fallback gjsonQuerier
}

const jqTimeout = 10 * time.Second

func (q *jqQuerier) Latest(indexPath string, kind Kind) (*core.IndexEntry, bool) {
	out, err := q.run(indexPath, fmt.Sprintf(".%s[0]", kind))
	if err != nil {
		return q.fallback.Latest(indexPath, kind)
	}
	return decodeEntry(gjson.Parse(out))
}

func (q *jqQuerier) Find(indexPath string, kind Kind, prefix string) (*core.IndexEntry, bool) {
	query := fmt.Sprintf(
		`.%s | map(select((.session_id | startswith(%q)) or (.timestamp | startswith(%q)))) | .[0]`,
		kind, prefix, prefix)
	out, err := q.run(indexPath, query)
	if err != nil {
		return q.fallback.Find(indexPath, kind, prefix)
	}
	return decodeEntry(gjson.Parse(out))
}

func (q *jqQuerier) List(indexPath string, kind Kind, sessionFilter string) []core.IndexEntry {
	query := fmt.Sprintf(".%s", kind)
	if sessionFilter != "" {
		query = fmt.Sprintf(`.%s | map(select(.session_id | startswith(%q)))`, kind, sessionFilter)
	}
	out, err := q.run(indexPath, query)
	if err != nil {
		return q.fallback.List(indexPath, kind, sessionFilter)
	}

	var entries []core.IndexEntry
	for _, item := range gjson.Parse(out).Array() {
		if e, ok := decodeEntry(item); ok {
			entries = append(entries, *e)
		}
	}
	return entries
}

func (q *jqQuerier) run(indexPath, query string) (string, error) {
	f, err := os.Open(indexPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), jqTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "jq", "-c", query)
	cmd.Stdin = f
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(out))
	if s == "" || s == "null" {
		return "", fmt.Errorf("jq returned no result")
	}
	return s, nil
}
