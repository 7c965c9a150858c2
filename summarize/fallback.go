package summarize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jenningsloy318/context-keeper/core"
)

// wordRE matches naive keyword candidates: alphabetic tokens of four or more
// characters.
var wordRE = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

// StructuredFallback builds a summary from locally available data only: the
// modified-file list, a tool-usage histogram, a sample of user requests, and
// a naive keyword set. A pure function with no network dependency.
func StructuredFallback(content *core.Content, meta core.Metadata) string {
	var b strings.Builder

	b.WriteString("# Session Summary (Structured Extraction)\n\n")
	b.WriteString("## Metadata\n")
	fmt.Fprintf(&b, "- **Session ID:** %s\n", meta.SessionID)
	fmt.Fprintf(&b, "- **Project:** %s\n", meta.CWD)
	fmt.Fprintf(&b, "- **Trigger:** %s\n", meta.Trigger)
	fmt.Fprintf(&b, "- **Permission Mode:** %s\n", meta.PermissionMode)
	fmt.Fprintf(&b, "- **Hook Event:** %s\n", meta.HookEvent)
	fmt.Fprintf(&b, "- **Timestamp:** %s\n", meta.Timestamp)
	fmt.Fprintf(&b, "- **Total Messages:** %d\n", content.MessageCount)

	if meta.CustomInstructions != "" {
		b.WriteString("\n## Custom Instructions\n")
		b.WriteString(meta.CustomInstructions)
		b.WriteString("\n")
	}

	b.WriteString("\n## Files Modified\n")
	if len(content.FilesModified) == 0 {
		b.WriteString("- None tracked\n")
	}
	for _, f := range content.FilesModified {
		fmt.Fprintf(&b, "- `%s`\n", f)
	}

	b.WriteString("\n## Tool Usage\n")
	usage := toolUsage(content.ToolCalls)
	if len(usage) == 0 {
		b.WriteString("- None tracked\n")
	}
	for _, u := range firstN(usage, 10) {
		fmt.Fprintf(&b, "- %s: %d calls\n", u.tool, u.count)
	}

	b.WriteString("\n## Sample User Requests\n")
	if len(content.UserMessages) == 0 {
		b.WriteString("- None captured\n")
	}
	for _, msg := range firstN(content.UserMessages, 5) {
		if len(msg) > 200 {
			msg = core.Truncate(msg, 200) + "..."
		}
		fmt.Fprintf(&b, "- %s\n", msg)
	}

	b.WriteString("\n## Keywords\n")
	keywords := Keywords(content.UserMessages)
	if len(keywords) == 0 {
		b.WriteString("None extracted\n")
	} else {
		b.WriteString(strings.Join(keywords, ", "))
		b.WriteString("\n")
	}

	b.WriteString("\n---\n*Note: This is a structured extraction. LLM-based summary unavailable (no API key or error).*\n")
	return b.String()
}

// Keywords extracts a naive keyword set from the first 20 user messages:
// lowercase alphabetic tokens, at most 5 per message, deduplicated, capped
// at 15, sorted for stable output.
func Keywords(userMessages []string) []string {
	seen := make(map[string]bool)
	for _, msg := range firstN(userMessages, 20) {
		words := wordRE.FindAllString(strings.ToLower(msg), -1)
		for _, w := range firstN(words, 5) {
			seen[w] = true
		}
	}
	keywords := make([]string, 0, len(seen))
	for w := range seen {
		keywords = append(keywords, w)
	}
	sort.Strings(keywords)
	return firstN(keywords, 15)
}

type toolCount struct {
	tool  string
	count int
}

// toolUsage builds a histogram of tool names, most-used first. Ties break
// alphabetically so output is stable.
func toolUsage(calls []core.ToolCall) []toolCount {
	counts := make(map[string]int)
	for _, tc := range calls {
		tool := tc.Tool
		if tool == "" {
			tool = "unknown"
		}
		counts[tool]++
	}
	out := make([]toolCount, 0, len(counts))
	for tool, n := range counts {
		out = append(out, toolCount{tool, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].tool < out[j].tool
	})
	return out
}
