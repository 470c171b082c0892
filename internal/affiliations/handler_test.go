package affiliations_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmcallister/orcview/internal/affiliations"
	"github.com/jmcallister/orcview/internal/sessions"
	"github.com/jmcallister/orcview/pkg/pagination"
	"github.com/jmcallister/orcview/pkg/routes"
)

const testCookie = "orcview_session"

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := sessions.NewStore[*affiliations.Snapshot](time.Hour, logger)
	sys := affiliations.New(logger)

	h := sys.Handler(store, pagination.Config{DefaultPageSize: 50, MaxPageSize: 500}, 20*1024*1024, testCookie)

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

func uploadForm(t *testing.T, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "affiliations.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	writer.Close()

	return &buf, writer.FormDataContentType()
}

func doUpload(t *testing.T, mux *http.ServeMux, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := uploadForm(t, content)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/affiliations", body)
	req.Header.Set("Content-Type", contentType)
	mux.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookie {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestHandlerUpload(t *testing.T) {
	mux := newTestMux(t)

	rec := doUpload(t, mux, buildCSV(
		`0000-0002-1825-0097,Josiah,Carberry,EMPLOYMENT,Professor,Psychoceramics,2015,2020,,,Brown University,RINGGOLD,6752`,
		`not-an-orcid,Bad,Row,EMPLOYMENT,,,,,,,,,`,
	))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	sessionCookie(t, rec)

	var result affiliations.UploadResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if result.TotalRows != 2 {
		t.Errorf("total rows = %d, want 2", result.TotalRows)
	}
	if result.Ingested != 1 {
		t.Errorf("ingested = %d, want 1", result.Ingested)
	}
	if result.Excluded != 1 {
		t.Errorf("excluded = %d, want 1", result.Excluded)
	}
	if result.IssueCounts[affiliations.IssueInvalidIdentifier] != 1 {
		t.Errorf("issue counts = %v", result.IssueCounts)
	}
}

func TestHandlerUploadSchemaError(t *testing.T) {
	mux := newTestMux(t)

	rec := doUpload(t, mux, []byte("Wrong,Header\nvalue,value\n"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var body struct {
		Error          string   `json:"error"`
		MissingColumns []string `json:"missing_columns"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.MissingColumns) != 13 {
		t.Errorf("missing columns = %d, want 13", len(body.MissingColumns))
	}
}

func TestHandlerUploadMissingFile(t *testing.T) {
	mux := newTestMux(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("note", "no file here")
	writer.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/affiliations", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerQueryWithoutUpload(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/affiliations/query", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerQuery(t *testing.T) {
	mux := newTestMux(t)

	upload := doUpload(t, mux, buildCSV(
		`0000-0002-1825-0097,Josiah,Carberry,EMPLOYMENT,Professor,Physics,2015,2020,,,Brown,RINGGOLD,6752`,
		`0000-0001-5109-3700,Laurel,Haak,MEMBERSHIP,Director,,2012,,,,ORCID,GRID,grid.1`,
	))
	if upload.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", upload.Code, upload.Body.String())
	}
	cookie := sessionCookie(t, upload)

	body, _ := json.Marshal(affiliations.QueryRequest{
		Criteria: affiliations.Criteria{Roles: []string{"EMPLOYMENT"}},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/affiliations/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var result affiliations.QueryResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if result.Rows.Total != 1 {
		t.Errorf("rows total = %d, want 1", result.Rows.Total)
	}
	if len(result.Rows.Data) != 1 || result.Rows.Data[0].OrcidID != "0000-0002-1825-0097" {
		t.Errorf("rows = %+v", result.Rows.Data)
	}
	if result.Summary.TotalRows != 1 {
		t.Errorf("summary total = %d, want 1", result.Summary.TotalRows)
	}

	// Facets describe the full table regardless of criteria.
	if len(result.Facets.Roles) != 2 {
		t.Errorf("facet roles = %v, want both roles", result.Facets.Roles)
	}
}

func TestHandlerQueryPagination(t *testing.T) {
	mux := newTestMux(t)

	rows := []string{
		`0000-0002-1825-0097,A,A,EMPLOYMENT,,,2010,,,,,,`,
		`0000-0001-5109-3700,B,B,EMPLOYMENT,,,2011,,,,,,`,
		`0000-0002-1694-233X,C,C,EMPLOYMENT,,,2012,,,,,,`,
	}
	upload := doUpload(t, mux, buildCSV(rows...))
	cookie := sessionCookie(t, upload)

	body, _ := json.Marshal(affiliations.QueryRequest{
		PageRequest: pagination.PageRequest{Page: 2, PageSize: 2},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/affiliations/query", bytes.NewReader(body))
	req.AddCookie(cookie)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var result affiliations.QueryResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if result.Rows.Total != 3 {
		t.Errorf("total = %d, want 3", result.Rows.Total)
	}
	if result.Rows.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", result.Rows.TotalPages)
	}
	if len(result.Rows.Data) != 1 {
		t.Fatalf("page 2 rows = %d, want 1", len(result.Rows.Data))
	}
	if result.Rows.Data[0].GivenNames != "C" {
		t.Errorf("page 2 row = %+v", result.Rows.Data[0])
	}
}

func TestHandlerExport(t *testing.T) {
	mux := newTestMux(t)

	upload := doUpload(t, mux, buildCSV(
		`0000-0002-1825-0097,Josiah,Carberry,EMPLOYMENT,,Physics,2015,,,,,,`,
		`0000-0001-5109-3700,Laurel,Haak,MEMBERSHIP,,,2012,,,,,,`,
	))
	cookie := sessionCookie(t, upload)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/affiliations/export?role=EMPLOYMENT", nil)
	req.AddCookie(cookie)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="filtered_orcid_data.csv"` {
		t.Errorf("content-disposition = %q", cd)
	}

	lines := bytes.Count(rec.Body.Bytes(), []byte("\n"))
	if lines != 2 {
		t.Errorf("lines = %d, want header + 1 filtered row", lines)
	}
}

func TestHandlerExportWithoutUpload(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/affiliations/export", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerIssues(t *testing.T) {
	mux := newTestMux(t)

	upload := doUpload(t, mux, buildCSV(
		`0000-0002-1825-0097,A,B,EMPLOYMENT,,,bad-year,,,,,,`,
	))
	cookie := sessionCookie(t, upload)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/affiliations/issues", nil)
	req.AddCookie(cookie)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		TotalRows   int                           `json:"total_rows"`
		Ingested    int                           `json:"ingested"`
		IssueCounts map[affiliations.IssueKind]int `json:"issue_counts"`
		Issues      []affiliations.Issue          `json:"issues"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.TotalRows != 1 || body.Ingested != 1 {
		t.Errorf("rows = %d/%d, want 1/1", body.TotalRows, body.Ingested)
	}
	if body.IssueCounts[affiliations.IssueUnparseableYear] != 1 {
		t.Errorf("issue counts = %v", body.IssueCounts)
	}
	if len(body.Issues) != 1 {
		t.Errorf("issues = %v", body.Issues)
	}
}

func TestHandlerClear(t *testing.T) {
	mux := newTestMux(t)

	upload := doUpload(t, mux, buildCSV(
		`0000-0002-1825-0097,A,B,EMPLOYMENT,,,,,,,,,`,
	))
	cookie := sessionCookie(t, upload)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/affiliations", nil)
	req.AddCookie(cookie)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/affiliations/query", bytes.NewReader([]byte("{}")))
	req.AddCookie(cookie)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("query after clear = %d, want 404", rec.Code)
	}
}

func TestHandlerSchemaErrorPreservesTable(t *testing.T) {
	mux := newTestMux(t)

	upload := doUpload(t, mux, buildCSV(
		`0000-0002-1825-0097,A,B,EMPLOYMENT,,,,,,,,,`,
	))
	cookie := sessionCookie(t, upload)

	body, contentType := uploadForm(t, []byte("Wrong,Header\nx,y\n"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/affiliations", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/affiliations/query", bytes.NewReader([]byte("{}")))
	req.AddCookie(cookie)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("query after failed upload = %d, want 200 (prior table intact)", rec.Code)
	}
}

func TestHandlerRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := sessions.NewStore[*affiliations.Snapshot](time.Hour, logger)
	sys := affiliations.New(logger)
	group := sys.Handler(store, pagination.Config{DefaultPageSize: 50, MaxPageSize: 500}, 1024, testCookie).Routes()

	if group.Prefix != "/affiliations" {
		t.Errorf("prefix = %q, want /affiliations", group.Prefix)
	}

	want := []struct {
		method  string
		pattern string
	}{
		{"POST", ""},
		{"DELETE", ""},
		{"POST", "/query"},
		{"GET", "/export"},
		{"GET", "/issues"},
	}

	if len(group.Routes) != len(want) {
		t.Fatalf("route count = %d, want %d", len(group.Routes), len(want))
	}
	for i, w := range want {
		r := group.Routes[i]
		if r.Method != w.method || r.Pattern != w.pattern {
			t.Errorf("route[%d] = %s %s, want %s %s", i, r.Method, r.Pattern, w.method, w.pattern)
		}
	}
}
