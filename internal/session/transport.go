package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie name expected by clients.
const CookieName = "session"

// CookieTransport reads and writes the session id as a plain HTTP cookie.
// The id itself is the capability; the cookie carries it unencrypted with
// HttpOnly and SameSite=Lax set.
type CookieTransport struct {
	secure bool
}

// NewCookieTransport creates a cookie transport. Secure marks cookies for
// HTTPS-only delivery and should be on outside local development.
func NewCookieTransport(secure bool) *CookieTransport {
	return &CookieTransport{secure: secure}
}

// SessionID extracts the session id from the request cookie. Empty string
// when the cookie is absent.
func (t *CookieTransport) SessionID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Set writes the session cookie with the given time-to-live.
func (t *CookieTransport) Set(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes the session cookie (Max-Age=0 per the original contract;
// net/http serializes MaxAge<0 as Max-Age=0).
func (t *CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
