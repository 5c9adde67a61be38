package worker

import (
	"net/http"
	"strconv"

	apperrors "github.com/louisbranch/pwa.edit/internal/platform/errors"
	"github.com/louisbranch/pwa.edit/internal/platform/httpx"
	"github.com/louisbranch/pwa.edit/internal/services/offline/strategy"
)

// CacheHeader reports how the offline layer answered a request.
const CacheHeader = "X-Offline-Cache"

// Handler adapts the worker to net/http.
func Handler(w *Worker) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		req, err := strategy.RequestFromHTTP(r)
		if err != nil {
			httpx.WriteError(rw, apperrors.Wrap(apperrors.KindInvalidInput, "read request", err))
			return
		}
		result, err := w.Handle(httpx.RequestContext(r), req)
		if err != nil {
			httpx.WriteError(rw, err)
			return
		}
		writeResult(rw, result)
	})
}

func writeResult(rw http.ResponseWriter, result strategy.Result) {
	header := rw.Header()
	for name, values := range result.Response.Header {
		header[name] = append([]string(nil), values...)
	}
	header.Set(CacheHeader, string(result.Source))
	header.Set("Content-Length", strconv.Itoa(len(result.Response.Body)))

	status := result.Response.Status
	if status == 0 {
		// Opaque responses carry no readable status.
		status = http.StatusOK
	}
	rw.WriteHeader(status)
	_, _ = rw.Write(result.Response.Body)
}
