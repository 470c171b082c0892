// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, session storage, the registry client)
// that domain systems require.
package infrastructure

import (
	"log/slog"
	"os"

	"github.com/jmcallister/orcview/internal/affiliations"
	"github.com/jmcallister/orcview/internal/config"
	"github.com/jmcallister/orcview/internal/registry"
	"github.com/jmcallister/orcview/internal/sessions"
	"github.com/jmcallister/orcview/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules:
// lifecycle coordination, logging, the per-session table store, and the ORCID
// registry client.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Sessions  *sessions.Store[*affiliations.Snapshot]
	Registry  *registry.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store := sessions.NewStore[*affiliations.Snapshot](cfg.Sessions.TTLDuration(), logger)
	client := registry.NewClient(&cfg.Registry, logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Sessions:  store,
		Registry:  client,
	}, nil
}

// Start registers infrastructure systems with the lifecycle coordinator.
// The session store's eviction sweeper runs until shutdown.
func (i *Infrastructure) Start() error {
	return i.Sessions.Start(i.Lifecycle)
}
