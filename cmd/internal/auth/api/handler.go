package authapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdelrahmanaman/chef-circle/cmd/identity"
	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/session"
	"github.com/Abdelrahmanaman/chef-circle/cmd/security/password"
)

// dummyPassword is hashed once at construction; login failure paths verify
// the request password against that hash so an unknown email costs the same
// as a wrong password. The literal must satisfy the password policy.
const dummyPassword = "Dummy-Passw0rd-4-timing!"

// Handler wires HTTP auth endpoints to identity and session services.
type Handler struct {
	log *slog.Logger
	cfg Config

	identity  identity.Store
	sessions  *session.Service
	passwords password.Config

	validate *validator.Validate
	recorder Recorder

	dummyHash string
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithRecorder overrides the default no-op auth event recorder.
func WithRecorder(rec Recorder) HandlerOption {
	return func(h *Handler) {
		if h == nil || rec == nil {
			return
		}
		h.recorder = rec
	}
}

// NewHandler constructs an auth Handler over the given pool.
func NewHandler(log *slog.Logger, pool *pgxpool.Pool, cfg Config, pwCfg password.Config, sessCfg session.Config, opts ...HandlerOption) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if pool == nil {
		return nil, errors.New("auth: nil db pool")
	}

	idStore, err := identity.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}
	sessStore, err := session.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		log:       log,
		cfg:       cfg,
		identity:  idStore,
		sessions:  session.NewService(sessCfg, sessStore),
		passwords: pwCfg,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		recorder:  NoopRecorder{},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}

	// Dummy hash for timing-resistant login checks. Hash validates its input,
	// so a literal that fails the policy would leave login failure paths
	// without their equalizing verify.
	dummy, err := pwCfg.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth: dummy hash: %w", err)
	}
	h.dummyHash = dummy

	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /logout", h.RequireSession(h.handleLogout))
	mux.HandleFunc("GET /me", h.RequireSession(h.handleMe))
}

// Sessions returns the underlying session service.
func (h *Handler) Sessions() *session.Service {
	if h == nil {
		return nil
	}
	return h.sessions
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if msg, ok := h.validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}
	if err := h.passwords.Validate(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "weak_password", passwordPolicyMessage(err))
		return
	}

	hash, err := h.passwords.Hash(req.Password)
	if err != nil {
		h.log.Error("auth.register.hash.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	u, err := h.identity.CreateUser(ctx, identity.CreateUserInput{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: &hash,
		Now:          now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			h.recorder.RegisterRejected()
			writeError(w, http.StatusBadRequest, "email_taken", "This email already exists.")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("auth.register.create_user.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	token, sess, err := h.sessions.Issue(ctx, u.ID)
	if err != nil {
		h.log.Error("auth.register.issue_session.fail", "err", err, "user_id", u.ID)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.recorder.Registered()
	h.log.Info("auth.register.ok", "user_id", u.ID)

	h.setSessionCookie(w, token, sess.ExpiresAt)
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User created successfully!"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if msg, ok := h.validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	ctx := r.Context()

	u, err := h.identity.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if identity.IsNotFound(err) {
			// Timing resistance: run a verify against a dummy hash so an
			// unknown email costs the same as a wrong password.
			if h.dummyHash != "" {
				_, _ = h.passwords.Verify(h.dummyHash, req.Password)
			}
			h.recorder.LoginFailed()
			writeError(w, http.StatusBadRequest, "invalid_credentials", "Invalid email or password")
			return
		}
		h.log.Error("auth.login.lookup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	// Google-only accounts have no password hash and cannot log in here.
	if u.PasswordHash == nil {
		if h.dummyHash != "" {
			_, _ = h.passwords.Verify(h.dummyHash, req.Password)
		}
		h.recorder.LoginFailed()
		writeError(w, http.StatusBadRequest, "invalid_credentials", "Invalid email or password")
		return
	}

	ok, err := h.passwords.Verify(*u.PasswordHash, req.Password)
	if err != nil {
		// The client still sees the generic message, but a corrupted stored
		// hash is a server-side problem worth surfacing.
		h.log.Error("auth.login.verify.fail", "err", err, "user_id", u.ID)
	}
	if err != nil || !ok {
		h.recorder.LoginFailed()
		writeError(w, http.StatusBadRequest, "invalid_credentials", "Invalid email or password")
		return
	}

	token, sess, err := h.sessions.Issue(ctx, u.ID)
	if err != nil {
		h.log.Error("auth.login.issue_session.fail", "err", err, "user_id", u.ID)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.recorder.LoginSucceeded()
	h.log.Info("auth.login.ok", "user_id", u.ID)

	h.setSessionCookie(w, token, sess.ExpiresAt)
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Login successful!"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	res, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}

	// All sessions for the user, not just this device.
	if err := h.sessions.InvalidateAllForUser(r.Context(), res.User.ID); err != nil {
		h.log.Error("auth.logout.fail", "err", err, "user_id", res.User.ID)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.log.Info("auth.logout.ok", "user_id", res.User.ID)

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logout successful!"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	res, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: toUserResponse(res.User)})
}

// ---- validation ----

// validateRequest runs struct-tag validation and reports the first failing
// field's message.
func (h *Handler) validateRequest(v any) (string, bool) {
	err := h.validate.Struct(v)
	if err == nil {
		return "", true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldMessage(verrs[0]), false
	}
	return "invalid input", false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email address"
	case "max":
		return fe.Field() + " is too long"
	default:
		return fe.Field() + " is invalid"
	}
}

func passwordPolicyMessage(err error) string {
	switch {
	case errors.Is(err, password.ErrPasswordTooLong):
		return "Password is too long"
	default:
		// The signup form's rule: length plus mixed character classes.
		return "Password must be at least 8 characters long"
	}
}
