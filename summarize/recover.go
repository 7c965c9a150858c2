package summarize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jenningsloy318/context-keeper/core"
)

// LLM responses are untrusted text. The memory contract asks for a raw JSON
// object, but models wrap it in code fences, misspell keys, or truncate the
// output mid-string. Recovery runs in three stages: strict JSON, lenient
// gjson field lookup, then regex extraction of partially written fields.

var (
	// Both the requested "nowledge_summary" key and the common
	// "knowledge_summary" misspelling are accepted.
	distilledHeadRE = regexp.MustCompile(`(?s)"(?:k|n)owledge_summary"\s*:\s*"(.*?)"\s*,\s*"\w+`)
	distilledTailRE = regexp.MustCompile(`(?s)"(?:k|n)owledge_summary"\s*:\s*"(.*)`)
	fullTailRE      = regexp.MustCompile(`(?s)"full_memory"\s*:\s*"(.*)`)
	trailingJSONRE  = regexp.MustCompile(`"\s*}\s*$`)

	hashtagRE = regexp.MustCompile(`#(\w+)`)

	unescaper = strings.NewReplacer(`\"`, `"`, `\n`, "\n")
)

// ParseMemory recovers the two-field memory object from an LLM response.
// Returns false only when not even the distilled summary can be extracted.
func ParseMemory(raw string) (*core.Memory, bool) {
	s := stripFences(raw)

	// Strict path: a well-formed object carrying both required keys.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err == nil {
		_, hasDistilled := fields["nowledge_summary"]
		_, hasFull := fields["full_memory"]
		if hasDistilled && hasFull {
			var mem core.Memory
			if err := json.Unmarshal([]byte(s), &mem); err == nil {
				return &mem, true
			}
		}
	}

	// Lenient path: gjson tolerates trailing garbage around valid fields.
	distilled := gjson.Get(s, "nowledge_summary")
	if !distilled.Exists() {
		distilled = gjson.Get(s, "knowledge_summary")
	}
	if distilled.Exists() {
		return &core.Memory{
			Distilled: distilled.String(),
			Full:      gjson.Get(s, "full_memory").String(),
		}, true
	}

	// Last resort: regex over the raw text, handling truncation inside a
	// string value.
	return regexRecover(s)
}

func regexRecover(s string) (*core.Memory, bool) {
	var mem core.Memory

	if m := distilledHeadRE.FindStringSubmatch(s); m != nil {
		mem.Distilled = unescaper.Replace(m[1])
	} else if m := distilledTailRE.FindStringSubmatch(s); m != nil {
		mem.Distilled = unescaper.Replace(m[1])
	}

	if m := fullTailRE.FindStringSubmatch(s); m != nil {
		full := trailingJSONRE.ReplaceAllString(m[1], "")
		mem.Full = unescaper.Replace(full)
	}

	if mem.Distilled == "" {
		return nil, false
	}
	return &mem, true
}

// stripFences unwraps a markdown code fence around the response, preferring a
// ```json fence when present.
func stripFences(s string) string {
	for _, fence := range []string{"```json", "```"} {
		if i := strings.Index(s, fence); i >= 0 {
			rest := s[i+len(fence):]
			if j := strings.Index(rest, "```"); j >= 0 {
				rest = rest[:j]
			}
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(s)
}

// ExtractTopics pulls hashtag topics out of generated text, first-seen order,
// at most 10.
func ExtractTopics(text string) []string {
	var topics []string
	seen := make(map[string]bool)
	for _, m := range hashtagRE.FindAllStringSubmatch(text, -1) {
		tag := m[1]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		topics = append(topics, tag)
		if len(topics) == 10 {
			break
		}
	}
	return topics
}
