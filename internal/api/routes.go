package api

import (
	"net/http"

	"github.com/jmcallister/orcview/internal/config"
	"github.com/jmcallister/orcview/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Affiliations.Handler(
			runtime.Sessions,
			runtime.Pagination,
			cfg.API.MaxUploadSizeBytes(),
			cfg.Sessions.CookieName,
		).Routes(),
		domain.Registry.Handler(
			runtime.Sessions,
			cfg.Sessions.CookieName,
			cfg.Registry.MaxResults,
		).Routes(),
	)
}
