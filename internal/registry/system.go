package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmcallister/orcview/internal/affiliations"
	"github.com/jmcallister/orcview/internal/sessions"
)

// System defines the public contract for registry domain operations.
type System interface {
	Handler(
		store *sessions.Store[*affiliations.Snapshot],
		cookieName string,
		maxResults int,
	) *Handler

	Search(ctx context.Context, domains []string, maxResults int) ([]affiliations.Record, error)
}

type system struct {
	client       *Client
	affiliations affiliations.System
	logger       *slog.Logger
}

// New creates the registry domain system over the given client.
func New(client *Client, affSys affiliations.System, logger *slog.Logger) System {
	return &system{
		client:       client,
		affiliations: affSys,
		logger:       logger.With("system", "registry"),
	}
}

func (s *system) Handler(
	store *sessions.Store[*affiliations.Snapshot],
	cookieName string,
	maxResults int,
) *Handler {
	return NewHandler(s, s.affiliations, store, s.logger, cookieName, maxResults)
}

func (s *system) Search(ctx context.Context, domains []string, maxResults int) ([]affiliations.Record, error) {
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}

	records, err := s.client.Search(ctx, domains, maxResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	return records, nil
}
