package authapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/session"
)

type contextKey int

const sessionContextKey contextKey = iota

// SessionFromContext returns the validated session placed on the request
// context by RequireSession.
func SessionFromContext(ctx context.Context) (session.Result, bool) {
	res, ok := ctx.Value(sessionContextKey).(session.Result)
	return res, ok
}

// ContextWithSession returns ctx carrying a validated session, as
// RequireSession would produce it.
func ContextWithSession(ctx context.Context, res session.Result) context.Context {
	return context.WithValue(ctx, sessionContextKey, res)
}

// RequireSession wraps a handler with cookie-based session authentication.
// Any authentication failure is a generic 401; infrastructure failures are a
// generic 500 so the client cannot distinguish a missing session from an
// expired one.
func (h *Handler) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := h.authenticate(w, r)
		if !ok {
			return
		}
		next(w, r.WithContext(ContextWithSession(r.Context(), res)))
	}
}

// SessionFromRequest validates the session cookie without writing an error
// response. It is the optional-auth path: endpoints that serve both anonymous
// and signed-in viewers use it to learn who is asking. A sliding renewal
// still refreshes the cookie, the same as the required path, so the cookie's
// Expires never drifts behind the session.
func (h *Handler) SessionFromRequest(w http.ResponseWriter, r *http.Request) (session.Result, bool) {
	token, ok := h.sessionTokenFromCookie(r)
	if !ok {
		return session.Result{}, false
	}
	res, err := h.sessions.Validate(r.Context(), token)
	if err != nil {
		return session.Result{}, false
	}
	if res.Renewed {
		h.setSessionCookie(w, token, res.Session.ExpiresAt)
	}
	return res, true
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (session.Result, bool) {
	token, ok := h.sessionTokenFromCookie(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return session.Result{}, false
	}

	res, err := h.sessions.Validate(r.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
			return session.Result{}, false
		}
		h.log.Error("auth.session.validate.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return session.Result{}, false
	}

	// A renewed expiry is reflected back to the client so the cookie and the
	// server-side session stay in step.
	if res.Renewed {
		h.setSessionCookie(w, token, res.Session.ExpiresAt)
	}

	return res, true
}
