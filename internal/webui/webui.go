// Package webui serves the complaint form's static assets and, outside
// production, a plain-text dump of the loaded feed for operators.
package webui

import (
	"net/http"

	"kavyashar.org/intake/internal/app"
)

type WebUI struct {
	*app.Application
}

func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug/", webUI.debugIndexHandler)
	mux.HandleFunc("GET /form/{file}", webUI.formAssetHandler)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/form/index.html", http.StatusFound)
	})
}
