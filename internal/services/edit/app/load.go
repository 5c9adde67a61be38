package app

import (
	"context"
	"log"

	"github.com/louisbranch/pwa.edit/internal/services/edit/storage"
)

// DefaultContent is shown when no document has been saved yet.
const DefaultContent = "# Welcome to PWA Edit!\n\nTo leave the editing area, press the `esc` key, then `tab` or `shift+tab`."

// OrDefault returns text, or DefaultContent when text is empty.
func OrDefault(text string) string {
	if text == "" {
		return DefaultContent
	}
	return text
}

// Load sets the editor's initial content from the Local Store. A missing or
// empty value, or a store that cannot be read, leaves the default document.
// Load reports whether the content came from the store.
func Load(ctx context.Context, editor *Editor, store storage.Store) bool {
	text, ok, err := store.Get(ctx, storage.SettingsStore, storage.ContentKey)
	if err != nil {
		log.Printf("edit load content failed, using default: %v", err)
	}
	if err != nil || !ok || text == "" {
		editor.SetContent(DefaultContent)
		return false
	}
	editor.SetContent(text)
	return true
}

// Persist returns a listener that writes every edit to the Local Store.
func Persist(store storage.Store) Listener {
	return func(ctx context.Context, content string) error {
		return store.Put(ctx, storage.SettingsStore, storage.ContentKey, content)
	}
}
