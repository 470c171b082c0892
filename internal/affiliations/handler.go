package affiliations

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jmcallister/orcview/internal/sessions"
	"github.com/jmcallister/orcview/pkg/handlers"
	"github.com/jmcallister/orcview/pkg/pagination"
	"github.com/jmcallister/orcview/pkg/routes"
)

// Handler provides HTTP endpoints for affiliation operations, each scoped to
// the caller's cookie-bound session.
type Handler struct {
	sys           System
	store         *sessions.Store[*Snapshot]
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
	cookieName    string
}

// NewHandler creates a Handler with the given system, session store, logger,
// pagination config, upload size limit, and session cookie name.
func NewHandler(
	sys System,
	store *sessions.Store[*Snapshot],
	logger *slog.Logger,
	page pagination.Config,
	maxUploadSize int64,
	cookieName string,
) *Handler {
	return &Handler{
		sys:           sys,
		store:         store,
		logger:        logger.With("handler", "affiliations"),
		pagination:    page,
		maxUploadSize: maxUploadSize,
		cookieName:    cookieName,
	}
}

// Routes returns the route group definition for affiliation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/affiliations",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "DELETE", Pattern: "", Handler: h.Clear},
			{Method: "POST", Pattern: "/query", Handler: h.Query},
			{Method: "GET", Pattern: "/export", Handler: h.Export},
			{Method: "GET", Pattern: "/issues", Handler: h.Issues},
		},
	}
}

// UploadResult reports the outcome of an upload: how many source rows were
// ingested or excluded, and the validation issues found.
type UploadResult struct {
	TotalRows   int               `json:"total_rows"`
	Ingested    int               `json:"ingested"`
	Excluded    int               `json:"excluded"`
	IssueCounts map[IssueKind]int `json:"issue_counts"`
	Issues      []Issue           `json:"issues"`
}

// QueryRequest combines filter criteria and pagination for the query endpoint.
type QueryRequest struct {
	Criteria
	pagination.PageRequest
}

// Upload ingests a multipart spreadsheet upload, replacing the session's
// canonical table. A schema failure leaves any prior table untouched.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	table, issues, err := h.sys.Ingest(data)
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			handlers.RespondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":           schemaErr.Error(),
				"missing_columns": schemaErr.Missing,
			})
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.store.Put(id, &Snapshot{
		Table:      table,
		Issues:     issues,
		UploadedAt: time.Now(),
	})

	handlers.RespondJSON(w, http.StatusCreated, UploadResult{
		TotalRows:   table.SourceRows,
		Ingested:    table.Len(),
		Excluded:    table.SourceRows - table.Len(),
		IssueCounts: CountIssues(issues),
		Issues:      issues,
	})
}

// Query applies JSON filter criteria to the session table and returns a page
// of matching rows plus aggregates, summary, and facets.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	req.PageRequest.Normalize(h.pagination)

	snapshot, ok := h.snapshot(id)
	if !ok {
		handlers.RespondError(w, h.logger, MapHTTPStatus(ErrNoTable), ErrNoTable)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Query(snapshot, req.Criteria, req.PageRequest))
}

// Export streams the filtered subset as a CSV attachment. Criteria arrive as
// query parameters so the download works as a plain link.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	snapshot, ok := h.snapshot(id)
	if !ok {
		handlers.RespondError(w, h.logger, MapHTTPStatus(ErrNoTable), ErrNoTable)
		return
	}

	criteria := CriteriaFromQuery(r.URL.Query())
	data, err := h.sys.Export(snapshot.Table, criteria)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_orcid_data.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Issues returns the session table's validation issues and their counts.
func (h *Handler) Issues(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	snapshot, ok := h.snapshot(id)
	if !ok {
		handlers.RespondError(w, h.logger, MapHTTPStatus(ErrNoTable), ErrNoTable)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"total_rows":   snapshot.Table.SourceRows,
		"ingested":     snapshot.Table.Len(),
		"issue_counts": CountIssues(snapshot.Issues),
		"issues":       snapshot.Issues,
	})
}

// Clear drops the session's canonical table.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)
	h.store.Put(id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the caller's session ID, creating a session and setting
// the cookie when none exists.
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

func (h *Handler) snapshot(id uuid.UUID) (*Snapshot, bool) {
	snapshot, ok := h.store.Get(id)
	if !ok || snapshot == nil || snapshot.Table == nil {
		return nil, false
	}
	return snapshot, true
}
