package registry

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jmcallister/orcview/internal/affiliations"
	"github.com/jmcallister/orcview/internal/sessions"
	"github.com/jmcallister/orcview/pkg/handlers"
	"github.com/jmcallister/orcview/pkg/routes"
)

// Handler provides HTTP endpoints for ORCID registry searches.
type Handler struct {
	sys          System
	affiliations affiliations.System
	store        *sessions.Store[*affiliations.Snapshot]
	logger       *slog.Logger
	cookieName   string
	maxResults   int
}

// NewHandler creates a Handler with the given systems, session store, logger,
// session cookie name, and result cap.
func NewHandler(
	sys System,
	affSys affiliations.System,
	store *sessions.Store[*affiliations.Snapshot],
	logger *slog.Logger,
	cookieName string,
	maxResults int,
) *Handler {
	return &Handler{
		sys:          sys,
		affiliations: affSys,
		store:        store,
		logger:       logger.With("handler", "registry"),
		cookieName:   cookieName,
		maxResults:   maxResults,
	}
}

// Routes returns the route group definition for registry endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/registry",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/search", Handler: h.Search},
		},
	}
}

// SearchRequest carries the email domains to search and an optional result cap.
type SearchRequest struct {
	Domains    []string `json:"domains"`
	MaxResults int      `json:"max_results"`
}

// SearchResult reports how many records the search produced and the size of
// the session table after merging them in.
type SearchResult struct {
	Fetched int `json:"fetched"`
	Added   int `json:"added"`
	Total   int `json:"total"`
}

// Search queries the ORCID registry by email domains and merges the results
// into the session's canonical table, deduplicating against existing rows.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery)
		return
	}

	if req.MaxResults < 1 || req.MaxResults > h.maxResults {
		req.MaxResults = h.maxResults
	}

	records, err := h.sys.Search(r.Context(), req.Domains, req.MaxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	incoming := &affiliations.Table{Records: records, SourceRows: len(records)}

	snapshot, _ := h.store.Get(id)
	var base *affiliations.Table
	var issues []affiliations.Issue
	if snapshot != nil {
		base = snapshot.Table
		issues = snapshot.Issues
	}

	merged := h.affiliations.Merge(base, incoming)
	h.store.Put(id, &affiliations.Snapshot{
		Table:      merged,
		Issues:     issues,
		UploadedAt: time.Now(),
	})

	handlers.RespondJSON(w, http.StatusOK, SearchResult{
		Fetched: len(records),
		Added:   merged.Len() - base.Len(),
		Total:   merged.Len(),
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if id, ok := sessions.ReadCookie(r, h.cookieName); ok {
		if _, live := h.store.Get(id); live {
			return id
		}
	}

	id := h.store.Create()
	sessions.WriteCookie(w, h.cookieName, id)
	return id
}
