package app

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/pwa.edit/internal/platform/errors"
)

// Action names a menu command.
type Action string

const (
	ActionNew  Action = "new"
	ActionOpen Action = "open"
	ActionSave Action = "save"
)

// DefaultFilename names saved documents.
const DefaultFilename = "untitled.md"

// Download is a document handed to the user as a file.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Menu dispatches commands to an editor.
type Menu struct {
	editor *Editor
}

// NewMenu binds a menu to editor.
func NewMenu(editor *Editor) *Menu {
	return &Menu{editor: editor}
}

// New clears the document.
func (m *Menu) New(ctx context.Context) error {
	return m.editor.Update(ctx, "")
}

// Open replaces the document with text.
func (m *Menu) Open(ctx context.Context, text string) error {
	return m.editor.Update(ctx, text)
}

// Save returns the current document as a markdown file.
func (m *Menu) Save() Download {
	return Download{
		Filename:    DefaultFilename,
		ContentType: "text/markdown; charset=utf-8",
		Body:        []byte(m.editor.Content()),
	}
}

// Dispatch runs the named action. Only save produces a download.
func (m *Menu) Dispatch(ctx context.Context, name, text string) (Download, error) {
	switch Action(strings.ToLower(strings.TrimSpace(name))) {
	case ActionNew:
		return Download{}, m.New(ctx)
	case ActionOpen:
		return Download{}, m.Open(ctx, text)
	case ActionSave:
		return m.Save(), nil
	default:
		return Download{}, apperrors.E(apperrors.KindInvalidInput, "unknown action "+name)
	}
}
