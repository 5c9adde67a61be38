package edit

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	apperrors "github.com/louisbranch/pwa.edit/internal/platform/errors"
	"github.com/louisbranch/pwa.edit/internal/platform/httpx"
	"github.com/louisbranch/pwa.edit/internal/services/edit/app"
	"github.com/louisbranch/pwa.edit/internal/services/edit/static"
	"github.com/louisbranch/pwa.edit/internal/services/edit/templates"
)

// maxDocumentBytes caps a document accepted by the content API and open.
const maxDocumentBytes = 4 << 20

type handler struct {
	editor *app.Editor
	menu   *app.Menu
}

func (h *handler) routes() http.Handler {
	mux := http.NewServeMux()
	page := templates.PageContext{}
	get := httpx.RequireMethod(http.MethodGet, http.MethodHead)
	post := httpx.RequireMethod(http.MethodPost)

	mux.Handle("/{$}", get(http.HandlerFunc(h.editorPage)))
	mux.Handle("/index.html", get(http.HandlerFunc(h.editorPage)))
	mux.Handle("/offline.html", get(templ.Handler(templates.OfflinePage(page))))
	mux.Handle("/static/", get(http.StripPrefix("/static/", staticHandler())))
	mux.Handle("/api/content", httpx.RequireMethod(http.MethodGet, http.MethodPut)(http.HandlerFunc(h.content)))
	mux.Handle("/actions/new", post(http.HandlerFunc(h.actionNew)))
	mux.Handle("/actions/open", post(http.HandlerFunc(h.actionOpen)))
	mux.Handle("/actions/save", get(http.HandlerFunc(h.actionSave)))
	return mux
}

func staticHandler() http.Handler {
	files := http.FileServer(http.FS(static.FS))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	})
}

// editorPage serves the document-free shell; app.js fills the textarea from
// the content API.
func (h *handler) editorPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	templ.Handler(templates.EditorPage(templates.PageContext{}, app.DefaultContent)).ServeHTTP(w, r)
}

func (h *handler) content(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.Header().Set("Cache-Control", "no-store")
		_ = httpx.WriteText(w, http.StatusOK, app.OrDefault(h.editor.Content()))
		return
	}
	text, err := readDocument(r.Body)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.editor.Update(httpx.RequestContext(r), text); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) actionNew(w http.ResponseWriter, r *http.Request) {
	if _, err := h.menu.Dispatch(httpx.RequestContext(r), string(app.ActionNew), ""); err != nil {
		httpx.WriteError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// actionOpen accepts a multipart "file" upload or a "content" form field.
func (h *handler) actionOpen(w http.ResponseWriter, r *http.Request) {
	text, err := openedDocument(w, r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if _, err := h.menu.Dispatch(httpx.RequestContext(r), string(app.ActionOpen), text); err != nil {
		httpx.WriteError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) actionSave(w http.ResponseWriter, r *http.Request) {
	dl, err := h.menu.Dispatch(httpx.RequestContext(r), string(app.ActionSave), "")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Body)
}

func openedDocument(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes+(1<<20))
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", apperrors.Wrap(apperrors.KindInvalidInput, "read uploaded file", err)
		}
		defer func() {
			_ = file.Close()
		}()
		return readDocument(file)
	}
	if err := r.ParseForm(); err != nil {
		return "", apperrors.Wrap(apperrors.KindInvalidInput, "parse form", err)
	}
	if !r.PostForm.Has("content") {
		return "", apperrors.E(apperrors.KindInvalidInput, "file or content is required")
	}
	return r.PostForm.Get("content"), nil
}

func readDocument(body io.Reader) (string, error) {
	if body == nil {
		return "", nil
	}
	data, err := io.ReadAll(io.LimitReader(body, maxDocumentBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", apperrors.E(apperrors.KindInvalidInput, "document is too large")
		}
		return "", apperrors.Wrap(apperrors.KindInvalidInput, "read document", err)
	}
	if len(data) > maxDocumentBytes {
		return "", apperrors.E(apperrors.KindInvalidInput, "document is too large")
	}
	return string(data), nil
}
