package main

import (
	"encoding/json"
	"net/http"

	"github.com/jmcallister/orcview/internal/api"
	"github.com/jmcallister/orcview/internal/config"
	"github.com/jmcallister/orcview/internal/infrastructure"
	"github.com/jmcallister/orcview/pkg/middleware"
	"github.com/jmcallister/orcview/pkg/module"
	"github.com/jmcallister/orcview/web/dashboard"
)

type Modules struct {
	API       *module.Module
	Dashboard *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	dashboardModule := dashboard.NewModule("/app", cfg.API.BasePath)
	dashboardModule.Use(middleware.Logger(infra.Logger))

	return &Modules{
		API:       apiModule,
		Dashboard: dashboardModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Dashboard)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/app/", http.StatusFound)
	})

	return router
}
