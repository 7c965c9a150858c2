package main

import (
	"os"

	"github.com/jenningsloy318/context-keeper/core"
	"github.com/jenningsloy318/context-keeper/settings"
	"github.com/jenningsloy318/context-keeper/summarize"
)

// newGenerator resolves API configuration against the settings chain for the
// given working directory and builds the summary/memory generator.
func newGenerator(cwd string) *summarize.Generator {
	return summarize.New(summarize.ConfigFromSettings(settings.Default(cwd)))
}

// enrichMetadata fills the content-derived metadata fields. Topics come from
// the generated artifact text, not the raw conversation.
func enrichMetadata(meta *core.Metadata, content *core.Content, artifactText string) {
	meta.Topics = summarize.ExtractTopics(artifactText)
	meta.FilesModified = content.FilesModified
	meta.MessageCount = content.MessageCount
	meta.ToolCallCount = len(content.ToolCalls)
	meta.EventStart = content.StartTime
	meta.EventEnd = content.EndTime
}

// projectRoot picks the directory artifacts live under: the hook's cwd when
// present, the process working directory otherwise.
func projectRoot(cwd string) string {
	if cwd != "" {
		return cwd
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
