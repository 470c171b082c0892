package api

import (
	"github.com/jmcallister/orcview/internal/affiliations"
	"github.com/jmcallister/orcview/internal/registry"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Affiliations affiliations.System
	Registry     registry.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	affSystem := affiliations.New(runtime.Logger)

	registrySystem := registry.New(
		runtime.Infrastructure.Registry,
		affSystem,
		runtime.Logger,
	)

	return &Domain{
		Affiliations: affSystem,
		Registry:     registrySystem,
	}
}
