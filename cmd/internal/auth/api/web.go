package authapi

import (
	"net/http"
	"strings"
	"time"
)

// setSessionCookie binds a raw session token to the client. The cookie carries
// the token itself, never the derived session id, and expires together with
// the server-side session.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	if h == nil || w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cfg.Production,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie instructs the client to drop the session cookie.
func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	if h == nil || w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Production,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionTokenFromCookie extracts the raw token from the request, if present.
func (h *Handler) sessionTokenFromCookie(r *http.Request) (string, bool) {
	if h == nil || r == nil {
		return "", false
	}
	c, err := r.Cookie(h.cfg.CookieName)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}
