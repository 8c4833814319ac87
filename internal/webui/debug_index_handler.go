package webui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"kavyashar.org/intake/internal/appconf"
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/logging"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// debugDumpConfig keeps dumps of the full stop table readable.
var debugDumpConfig = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{Title: title, Pre: debugDumpConfig.Sdump(data)})
	if err != nil {
		logging.LogError(slog.Default(), "failed to execute debug template", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// debugIndexHandler dumps one feed table, the load status, the persisted
// import history or the store's row counts. It is not served in production.
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Application == nil || webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}

	var data any
	var title string

	dataType := r.URL.Query().Get("dataType")
	var tables feed.Tables
	if webUI.GtfsManager != nil {
		if ix := webUI.GtfsManager.Index(); ix != nil {
			tables = ix.Tables()
		}
	}

	switch dataType {
	case string(feed.Stops):
		data, title = tables.Stops, "Feed - Stops"
	case string(feed.Routes):
		data, title = tables.Routes, "Feed - Routes"
	case string(feed.Agencies):
		data, title = tables.Agencies, "Feed - Agencies"
	case string(feed.StopRoutes):
		data, title = tables.StopRoutes, "Feed - Stop to routes"
	case "status":
		if webUI.GtfsManager != nil {
			data = webUI.GtfsManager.Status()
		}
		title = "Feed - Load status"
	case "imports", "store":
		if webUI.ComplaintDB == nil {
			data = map[string]string{"error": "complaint store is not configured"}
			title = "Complaint store"
			break
		}
		var err error
		if dataType == "imports" {
			data, err = webUI.ComplaintDB.ListFeedImports(r.Context())
			title = "Complaint store - Feed imports"
		} else {
			data, err = webUI.ComplaintDB.TableCounts()
			title = "Complaint store - Row counts"
		}
		if err != nil {
			logging.LogError(logging.FromContext(r.Context()), "debug query failed", err,
				slog.String("data_type", dataType))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	default:
		data = map[string]string{
			"error": "Please use one of the following: status, stops, routes, agency, stop_to_routes, imports, store.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
