package sessions

import (
	"net/http"

	"github.com/google/uuid"
)

// ReadCookie extracts a session ID from the named request cookie.
func ReadCookie(r *http.Request, name string) (uuid.UUID, bool) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

// WriteCookie binds a session ID to the response as a host-scoped cookie.
// Sessions are anonymous analysis contexts, not identities, so no Secure
// attribute is forced here; the deployment's proxy terminates TLS.
func WriteCookie(w http.ResponseWriter, name string, id uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
