// Package app holds the editor document model and the menu actions that act
// on it.
package app

import (
	"context"
	"errors"
	"sync"
)

// Listener observes every edit. ctx is the edit's context.
type Listener func(ctx context.Context, content string) error

// Editor is the editing surface: one text buffer plus change listeners.
type Editor struct {
	// edit serializes Update so listeners see edits in the order they were
	// applied.
	edit sync.Mutex

	mu        sync.RWMutex
	content   string
	listeners []Listener
}

// NewEditor returns an empty editor.
func NewEditor() *Editor {
	return &Editor{}
}

// SetContent replaces the buffer without notifying listeners.
func (e *Editor) SetContent(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.content = text
}

// Content returns the current buffer.
func (e *Editor) Content() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.content
}

// OnUpdate registers fn to run after every Update.
func (e *Editor) OnUpdate(fn Listener) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Update replaces the buffer and notifies every listener in registration
// order. The buffer keeps the new text even when listeners fail.
func (e *Editor) Update(ctx context.Context, text string) error {
	e.edit.Lock()
	defer e.edit.Unlock()

	e.mu.Lock()
	e.content = text
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.Unlock()

	var errs []error
	for _, fn := range listeners {
		if err := fn(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
