package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/nijaru/videovoyager/config"
)

const SessionHeader = "X-Session-ID"

// sessionIDs finds the caller's session id in the X-Session-ID header or the
// session cookie, and issues a new one when neither is present.
type sessionIDs struct {
	cookieName string
	maxAge     int
}

func newSessionIDs(cfg config.SessionConfig) *sessionIDs {
	name := cfg.CookieName
	if name == "" {
		name = "vv_session"
	}
	return &sessionIDs{cookieName: name, maxAge: int(cfg.TTL.Seconds())}
}

func (s *sessionIDs) resolve(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(s.cookieName); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   s.maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, id)
	return id
}
