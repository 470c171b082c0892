package affiliations

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Domain errors for affiliation operations.
var (
	ErrNoTable      = errors.New("no affiliation data loaded for this session")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
)

// SchemaError is the fatal ingestion failure raised when required columns are
// missing from an uploaded file. The upload is rejected wholesale; any prior
// canonical table is left untouched.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// MapHTTPStatus maps affiliation domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrNoTable) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
