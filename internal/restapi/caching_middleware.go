package restapi

import (
	"fmt"
	"net/http"
)

const noStoreValue = "no-cache, no-store, must-revalidate"

// CacheControlMiddleware marks successful responses cacheable for
// maxAgeSeconds. Error responses are never cached, and a Cache-Control
// header the handler set itself is left alone.
func CacheControlMiddleware(maxAgeSeconds int, next http.Handler) http.Handler {
	value := noStoreValue
	if maxAgeSeconds > 0 {
		value = fmt.Sprintf("public, max-age=%d", maxAgeSeconds)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheControlWriter{ResponseWriter: w, value: value}, r)
	})
}

// noStore keeps a response out of caches. Handlers call it for answers
// computed while the feed is still loading.
func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", noStoreValue)
}

type cacheControlWriter struct {
	http.ResponseWriter
	value   string
	written bool
}

func (w *cacheControlWriter) WriteHeader(code int) {
	if !w.written {
		w.written = true
		h := w.ResponseWriter.Header()
		switch {
		case code < 200 || code >= 300:
			h.Set("Cache-Control", noStoreValue)
		case h.Get("Cache-Control") == "":
			h.Set("Cache-Control", w.value)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *cacheControlWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
