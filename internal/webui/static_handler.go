package webui

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"kavyashar.org/intake/internal/logging"
)

var allowedAssetExtensions = map[string]bool{
	".html": true, ".css": true, ".js": true, ".json": true,
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".ico": true, ".woff2": true,
}

// formAssetHandler serves one file of the built complaint form from
// FormAssetsDir. Only flat file names with known extensions are served.
func (webUI *WebUI) formAssetHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Application == nil || webUI.Config.FormAssetsDir == "" {
		http.NotFound(w, r)
		return
	}

	fileName := r.PathValue("file")
	if fileName == "" {
		fileName = filepath.Base(r.URL.Path)
	}
	if !allowedAssetExtensions[strings.ToLower(filepath.Ext(fileName))] {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if strings.Contains(fileName, "..") || strings.ContainsAny(fileName, "/\\\x00") {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	assetsDir, err := filepath.Abs(webUI.Config.FormAssetsDir)
	if err != nil {
		http.Error(w, "Internal configuration error", http.StatusInternalServerError)
		return
	}
	absPath := filepath.Join(assetsDir, fileName)
	rel, err := filepath.Rel(assetsDir, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		logging.LogOperation(logging.FromContext(r.Context()), "asset_path_rejected",
			slog.String("path", absPath))
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(absPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer logging.SafeCloseWithLogging(f, logging.FromContext(r.Context()), "form_asset")

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if strings.HasSuffix(fileName, ".html") {
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=86400")
	}
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), f)
}
