package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jenningsloy318/context-keeper/hook"
	"github.com/jenningsloy318/context-keeper/store"
)

// injectLatest is the shared read-side path: decide whether the hook
// invocation warrants context injection, and if so print the wrapped latest
// artifact to stdout. Every outcome is a success; a skip only logs why.
func injectLatest(kind store.Kind, in hook.Input) error {
	switch in.Source {
	case "clear":
		log.Info("session cleared, not loading previous context")
		return nil
	case "startup":
		log.Info("fresh startup, not loading previous context")
		return nil
	}
	if in.CWD == "" {
		log.Info("no working directory in hook input, skipping")
		return nil
	}

	st := store.New(in.CWD, kind)
	art := st.LoadLatest(in.SessionID)
	if art == nil {
		log.Info("no saved context found", "kind", kind)
		return nil
	}
	if hook.IsStale(art.CreatedAt, time.Now()) {
		log.Info("saved context is stale, skipping", "created_at", art.CreatedAt)
		return nil
	}

	fmt.Print(hook.FormatContext(art.Content, art.SessionID, art.CreatedAt,
		art.Trigger, art.MessageCount, in.Source, in.PermissionMode))
	log.Info("context injected", "kind", kind, "session", art.SessionID)
	return nil
}
