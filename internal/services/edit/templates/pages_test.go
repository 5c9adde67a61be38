package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestEditorPageEscapesPlaceholder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := EditorPage(PageContext{}, "</textarea><script>x</script>").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := buf.String()
	if strings.Contains(html, "</textarea><script>x") {
		t.Fatal("content was not escaped")
	}
	for _, want := range []string{`class="actions"`, `/static/editor.css`, `/static/app.js`, `&lt;/textarea&gt;`, ` readonly `} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestOfflinePageDefaultsTitle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := OfflinePage(PageContext{StaticURL: "/assets"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "<title>Offline | PWA Edit</title>") {
		t.Fatalf("title missing: %s", html)
	}
	if !strings.Contains(html, `/assets/editor.css`) {
		t.Fatalf("stylesheet missing: %s", html)
	}
}
