// Package templates renders the editor origin's HTML documents.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// PageContext carries the values every document needs.
type PageContext struct {
	Title     string
	StaticURL string
}

func (p PageContext) static(name string) string {
	base := p.StaticURL
	if base == "" {
		base = "/static"
	}
	return base + "/" + name
}

func head(w io.Writer, page PageContext) error {
	title := page.Title
	if title == "" {
		title = "PWA Edit"
	}
	_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
		`<meta name="viewport" content="width=device-width, initial-scale=1">`+
		`<title>`+templ.EscapeString(title)+`</title>`+
		`<link rel="stylesheet" href="`+templ.EscapeString(page.static("editor.css"))+`">`+
		`</head>`)
	return err
}

// EditorPage is the editor shell: a menu and a read-only textarea holding
// placeholder text until the script loads the saved document.
func EditorPage(page PageContext, placeholder string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := head(w, page); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<body>`+
			`<nav class="actions">`+
			`<form method="post" action="/actions/new"><button type="submit" name="action" value="new">New</button></form>`+
			`<form method="post" action="/actions/open" enctype="multipart/form-data">`+
			`<input type="file" name="file" accept=".md,.txt,text/*"><button type="submit">Open</button></form>`+
			`<a class="action" href="/actions/save" download>Save</a>`+
			`</nav>`+
			`<main><textarea id="editor" name="content" spellcheck="false" readonly autofocus>`+
			templ.EscapeString(placeholder)+
			`</textarea></main>`+
			`<script type="module" src="`+templ.EscapeString(page.static("app.js"))+`"></script>`+
			`</body></html>`)
		return err
	})
}

// OfflinePage is served in place of any page that cannot be loaded while the
// origin is unreachable.
func OfflinePage(page PageContext) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if page.Title == "" {
			page.Title = "Offline | PWA Edit"
		}
		if err := head(w, page); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<body><main class="offline">`+
			`<h1>You are offline</h1>`+
			`<p>This page is not available without a connection. `+
			`<a href="/">Return to the editor</a>; your document is still there.</p>`+
			`</main></body></html>`)
		return err
	})
}
