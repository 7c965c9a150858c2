package summarize

import (
	"encoding/json"
	"fmt"

	"github.com/jenningsloy318/context-keeper/core"
)

// Prompt assembly. Samples are truncated aggressively: the raw transcript is
// the source of truth, the prompt only needs enough signal to summarize.

func summaryPrompt(content *core.Content, meta core.Metadata) string {
	return fmt.Sprintf(`Analyze this coding session and create a comprehensive summary for future context restoration.

## Session Information
- Session ID: %s
- Project: %s
- Trigger: %s
- Permission Mode: %s
- Hook Event: %s
- Timestamp: %s
- Total Messages: %d
%s
## User Messages (sample)
%s

## Assistant Responses (sample)
%s

## Tool Calls
%s

## Files Modified
%s

---

Create a summary with these sections:

## Topics Discussed
- List main themes and subjects covered

## Code Changes
- Files modified with brief descriptions of changes
- Key code snippets if relevant

## Decisions Made
- Important decisions with rationale
- Trade-offs considered

## Key Outcomes
- What was accomplished
- Problems solved

## Context for Continuation
- Important context needed to continue this work
- Current state of implementation
- Next steps if mentioned

## Tags
- Relevant hashtags for categorization (e.g., #authentication #api #bugfix)

Be comprehensive but concise. Focus on information that would help resume this work later.`,
		meta.SessionID, meta.CWD, meta.Trigger, meta.PermissionMode, meta.HookEvent,
		meta.Timestamp, content.MessageCount,
		customInstructionsSection(meta.CustomInstructions),
		jsonSample(firstN(content.UserMessages, 10), 3000),
		jsonSample(firstN(content.AssistantMessages, 10), 3000),
		jsonSample(firstN(content.ToolCalls, 30), 2000),
		jsonSample(content.FilesModified, 2000),
	)
}

func memoryPrompt(content *core.Content, meta core.Metadata) string {
	return fmt.Sprintf(`Analyze this coding session and create a comprehensive memory for future context restoration.

## What MUST be preserved:
- Key architecture changes (system design, structural modifications, refactoring decisions)
- Key specification changes (requirements changes, business rules, validation logic updates)
- Multiple rounds of conversation that clarify issues and requirements
- Logs that show errors (error messages, stack traces, failure information)

## What should be refined/summarized:
- Repetitive conversations that converge on a solution
- Long error traces refined to show only key error indicators

## What should be avoided:
- Unrelated logs posted by the user (random logs, test outputs)
- Meaningless acknowledgments and raw tool outputs without context

## Session Information
- Session ID: %s
- Project: %s
- Trigger: %s
- Permission Mode: %s
- Hook Event: %s
- Timestamp: %s
- Total Messages: %d
%s
## Key Messages Preserved
%s

## Key Assistant Responses
%s

---

Create a memory covering: Topics Discussed, Architecture Changes, Specification
Changes, Code Changes (relative paths to the Project directory), Decisions Made,
Key Outcomes, Context for Continuation, and Tags (hashtags, e.g. #api #bugfix).

IMPORTANT: You must return a VALID JSON object with exactly two fields. Use the EXACT key names provided below:
1. "nowledge_summary": (NOTE THE SPELLING 'nowledge'). A detailed and comprehensive summary for retrieval (MAXIMUM 1750 characters).
   - Focus on: High-level purpose, Key decisions, Critical outcomes, and Next steps.
   - Do NOT list modified files (this is added automatically).
   - FILL the available space (aim for ~1700 chars). Be dense and informative.
2. "full_memory": The detailed markdown report following the structure above.

Return ONLY the raw JSON object. Do not wrap in markdown code blocks or add any other text.`,
		meta.SessionID, meta.CWD, meta.Trigger, meta.PermissionMode, meta.HookEvent,
		meta.Timestamp, content.MessageCount,
		customInstructionsSection(meta.CustomInstructions),
		jsonSample(firstN(lastN(content.UserMessages, 20), 15), 3000),
		jsonSample(firstN(lastN(content.AssistantMessages, 20), 15), 3000),
	)
}

func customInstructionsSection(instructions string) string {
	if instructions == "" {
		return ""
	}
	return fmt.Sprintf(`
## User's Custom Instructions
The user provided these specific instructions for this compaction:
%s

**Important:** Incorporate the user's custom instructions into your summary. Focus on what they've asked for.
`, instructions)
}

// jsonSample renders v as indented JSON, truncated to limit characters.
func jsonSample(v any, limit int) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return core.Truncate(string(data), limit)
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func lastN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[len(items)-n:]
	}
	return items
}
