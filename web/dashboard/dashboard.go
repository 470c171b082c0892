// Package dashboard serves the embedded single-page affiliation explorer UI.
package dashboard

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/jmcallister/orcview/pkg/module"
)

//go:embed index.html app.css app.js
var staticFS embed.FS

// NewModule creates a module that serves the dashboard at basePath. The API
// base path is injected into the page so the client scripts target the right
// endpoints.
func NewModule(basePath, apiBasePath string) *module.Module {
	router := buildRouter(basePath, apiBasePath)
	return module.New(basePath, router)
}

func buildRouter(basePath, apiBasePath string) http.Handler {
	mux := http.NewServeMux()

	tmpl := template.Must(template.ParseFS(staticFS, "index.html"))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		tmpl.Execute(w, map[string]string{
			"BasePath": basePath,
			"APIBase":  apiBasePath,
		})
	})

	mux.Handle("GET /", http.FileServer(http.FS(staticFS)))

	return mux
}
