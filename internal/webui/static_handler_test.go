package webui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kavyashar.org/intake/internal/app"
	"kavyashar.org/intake/internal/appconf"
)

// formMux serves a form directory that has a sibling holding a secret, so
// escapes out of the form directory are observable.
func formMux(t *testing.T) *http.ServeMux {
	t.Helper()
	root := t.TempDir()

	formDir := filepath.Join(root, "form")
	require.NoError(t, os.MkdirAll(filepath.Join(formDir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(formDir, "index.html"), []byte("<html>טופס</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(formDir, "app.js"), []byte("console.log(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(formDir, "notes.txt"), []byte("private"), 0o644))

	secretDir := filepath.Join(root, "form-secret")
	require.NoError(t, os.MkdirAll(secretDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(secretDir, "secret.html"), []byte("SECRET"), 0o644))

	webUI := &WebUI{Application: &app.Application{
		Config: appconf.Config{Env: appconf.Test, FormAssetsDir: formDir},
	}}
	mux := http.NewServeMux()
	webUI.SetWebUIRoutes(mux)
	return mux
}

func TestFormAssetHandler(t *testing.T) {
	mux := formMux(t)

	tests := []struct {
		name        string
		path        string
		wantStatus  int // 0 means any refusal
		wantBody    string
		wantCaching string
	}{
		{"index page", "/form/index.html", http.StatusOK, "טופס", "no-cache"},
		{"script", "/form/app.js", http.StatusOK, "console.log", "public, max-age=86400"},
		{"missing file", "/form/missing.css", http.StatusNotFound, "", ""},
		{"extension not served", "/form/notes.txt", http.StatusNotFound, "", ""},
		{"directory", "/form/assets", http.StatusNotFound, "", ""},
		// Rejected either by the mux or by the handler; only the outcome matters.
		{"encoded traversal", "/form/..%2Fform-secret%2Fsecret.html", 0, "", ""},
		{"encoded backslash", "/form/..%5Cform-secret%5Csecret.html", http.StatusBadRequest, "", ""},
		{"null byte", "/form/index.html%00.png", http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if tt.wantStatus == 0 {
				assert.NotEqual(t, http.StatusOK, rr.Code)
			} else {
				assert.Equal(t, tt.wantStatus, rr.Code)
			}
			assert.NotContains(t, rr.Body.String(), "SECRET")
			if tt.wantBody != "" {
				assert.Contains(t, rr.Body.String(), tt.wantBody)
			}
			if tt.wantCaching != "" {
				assert.Equal(t, tt.wantCaching, rr.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestFormAssetHandler_NotConfigured(t *testing.T) {
	webUI := &WebUI{Application: &app.Application{Config: appconf.Config{Env: appconf.Test}}}
	mux := http.NewServeMux()
	webUI.SetWebUIRoutes(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/form/index.html", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRootRedirectsToForm(t *testing.T) {
	mux := formMux(t)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/form/index.html", rr.Header().Get("Location"))
}
