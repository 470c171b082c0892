package api

import (
	"github.com/jmcallister/orcview/internal/config"
	"github.com/jmcallister/orcview/internal/infrastructure"
	"github.com/jmcallister/orcview/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Sessions:  infra.Sessions,
			Registry:  infra.Registry,
		},
		Pagination: cfg.API.Pagination,
	}
}
