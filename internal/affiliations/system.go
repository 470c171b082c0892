package affiliations

import (
	"log/slog"
	"time"

	"github.com/jmcallister/orcview/internal/sessions"
	"github.com/jmcallister/orcview/pkg/pagination"
)

// Snapshot is one session's ingestion state: the canonical table plus the
// validation issues recorded when it was built. A nil Snapshot (or nil Table)
// means the session has not uploaded a file yet.
type Snapshot struct {
	Table      *Table    `json:"table"`
	Issues     []Issue   `json:"issues"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// QueryResult is the response to a filter interaction: a page of matching
// rows plus the aggregate views, summary metrics, filter facets, and the
// table's issue counts for the data-quality banner.
type QueryResult struct {
	Rows        pagination.PageResult[Record] `json:"rows"`
	Roles       []Bucket[string]              `json:"roles"`
	Departments []Bucket[string]              `json:"departments"`
	Years       []Bucket[int]                 `json:"years"`
	Summary     Summary                       `json:"summary"`
	Facets      Facets                        `json:"facets"`
	IssueCounts map[IssueKind]int             `json:"issue_counts"`
}

// System defines the public contract for affiliation domain operations.
type System interface {
	Handler(
		store *sessions.Store[*Snapshot],
		page pagination.Config,
		maxUploadSize int64,
		cookieName string,
	) *Handler

	Ingest(data []byte) (*Table, []Issue, error)
	Query(snapshot *Snapshot, criteria Criteria, page pagination.PageRequest) *QueryResult
	Export(table *Table, criteria Criteria) ([]byte, error)
	Merge(base, incoming *Table) *Table
}

type system struct {
	logger *slog.Logger
}

// New creates the affiliation domain system.
func New(logger *slog.Logger) System {
	return &system{
		logger: logger.With("system", "affiliations"),
	}
}

func (s *system) Handler(
	store *sessions.Store[*Snapshot],
	page pagination.Config,
	maxUploadSize int64,
	cookieName string,
) *Handler {
	return NewHandler(s, store, s.logger, page, maxUploadSize, cookieName)
}

func (s *system) Ingest(data []byte) (*Table, []Issue, error) {
	table, issues, err := Ingest(data)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(
		"file ingested",
		"source_rows", table.SourceRows,
		"records", table.Len(),
		"issues", len(issues),
	)

	return table, issues, nil
}

func (s *system) Query(snapshot *Snapshot, criteria Criteria, page pagination.PageRequest) *QueryResult {
	result := Apply(snapshot.Table, criteria)

	return &QueryResult{
		Rows:        pagination.Slice(result.Rows, page),
		Roles:       result.Roles,
		Departments: result.Departments,
		Years:       result.Years,
		Summary:     result.Summary,
		Facets:      FacetsOf(snapshot.Table),
		IssueCounts: CountIssues(snapshot.Issues),
	}
}

func (s *system) Export(table *Table, criteria Criteria) ([]byte, error) {
	result := Apply(table, criteria)
	return ExportCSV(result.Rows)
}

func (s *system) Merge(base, incoming *Table) *Table {
	merged := Merge(base, incoming)

	s.logger.Info(
		"tables merged",
		"base", base.Len(),
		"incoming", incoming.Len(),
		"merged", merged.Len(),
	)

	return merged
}
