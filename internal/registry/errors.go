package registry

import (
	"errors"
	"net/http"
)

// Domain errors for registry operations.
var (
	ErrNoDomains    = errors.New("no email domains provided")
	ErrUnavailable  = errors.New("ORCID registry unavailable")
	ErrInvalidQuery = errors.New("invalid registry search request")
)

// MapHTTPStatus maps registry domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoDomains) || errors.Is(err, ErrInvalidQuery) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
