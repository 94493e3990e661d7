package authapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Abdelrahmanaman/chef-circle/cmd/identity"
	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/session"
	"github.com/Abdelrahmanaman/chef-circle/cmd/security/password"
)

// fastPasswordConfig keeps Argon2id cheap in tests.
func fastPasswordConfig() password.Config {
	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

// fakeIdentityStore is an in-memory identity.Store.
type fakeIdentityStore struct {
	users map[string]identity.User // keyed by email_norm
	seq   int
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{users: make(map[string]identity.User)}
}

func (f *fakeIdentityStore) CreateUser(_ context.Context, in identity.CreateUserInput) (identity.User, error) {
	norm := identity.NormalizeEmail(in.Email)
	if _, exists := f.users[norm]; exists {
		return identity.User{}, identity.ConflictError{Op: "identity.CreateUser", Field: "email"}
	}
	f.seq++
	id, err := identity.NewULID(in.Now)
	if err != nil {
		return identity.User{}, err
	}
	u := identity.User{
		ID:           id,
		Email:        strings.TrimSpace(in.Email),
		EmailNorm:    norm,
		PasswordHash: in.PasswordHash,
		GoogleID:     in.GoogleID,
		Name:         in.Name,
		UnitSystem:   "metric",
		CreatedAt:    in.Now,
		UpdatedAt:    in.Now,
	}
	f.users[norm] = u
	return u, nil
}

func (f *fakeIdentityStore) GetUserByEmail(_ context.Context, email string) (identity.User, error) {
	u, ok := f.users[identity.NormalizeEmail(email)]
	if !ok {
		return identity.User{}, identity.NotFoundError{Op: "identity.GetUserByEmail", Resource: "user"}
	}
	return u, nil
}

func (f *fakeIdentityStore) GetUserByID(_ context.Context, id string) (identity.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return identity.User{}, identity.NotFoundError{Op: "identity.GetUserByID", Resource: "user"}
}

func (f *fakeIdentityStore) SetResetToken(_ context.Context, userID, hashHex string, expiresAt time.Time) error {
	for k, u := range f.users {
		if u.ID == userID {
			u.ResetPasswordToken = &hashHex
			u.ResetPasswordExpires = &expiresAt
			f.users[k] = u
			return nil
		}
	}
	return identity.NotFoundError{Op: "identity.SetResetToken", Resource: "user"}
}

func (f *fakeIdentityStore) ClearResetToken(_ context.Context, userID string) error {
	for k, u := range f.users {
		if u.ID == userID {
			u.ResetPasswordToken = nil
			u.ResetPasswordExpires = nil
			f.users[k] = u
			return nil
		}
	}
	return identity.NotFoundError{Op: "identity.ClearResetToken", Resource: "user"}
}

// fakeSessionStore is an in-memory session.Store joined against the identity fake.
type fakeSessionStore struct {
	ids      *fakeIdentityStore
	sessions map[string]session.Session
}

func newFakeSessionStore(ids *fakeIdentityStore) *fakeSessionStore {
	return &fakeSessionStore{ids: ids, sessions: make(map[string]session.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, id, userID string, expiresAt time.Time) (session.Session, error) {
	s := session.Session{ID: id, UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now().UTC()}
	f.sessions[id] = s
	return s, nil
}

func (f *fakeSessionStore) FindWithUser(ctx context.Context, id string) (session.Session, identity.User, error) {
	s, ok := f.sessions[id]
	if !ok {
		return session.Session{}, identity.User{}, session.ErrSessionNotFound
	}
	u, err := f.ids.GetUserByID(ctx, s.UserID)
	if err != nil {
		return session.Session{}, identity.User{}, session.ErrSessionNotFound
	}
	return s, u, nil
}

func (f *fakeSessionStore) Renew(_ context.Context, id string, expiresAt time.Time) error {
	if s, ok := f.sessions[id]; ok {
		s.ExpiresAt = expiresAt
		f.sessions[id] = s
	}
	return nil
}

func (f *fakeSessionStore) DeleteByID(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) DeleteAllForUser(_ context.Context, userID string) error {
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

type testEnv struct {
	handler  *Handler
	ids      *fakeIdentityStore
	sessions *fakeSessionStore
	mux      *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ids := newFakeIdentityStore()
	sess := newFakeSessionStore(ids)

	pwCfg := fastPasswordConfig()

	h := &Handler{
		log:       slog.New(slog.DiscardHandler),
		cfg:       Config{CookieName: "session", CookiePath: "/", MaxBodyBytes: 1 << 20},
		identity:  ids,
		sessions:  session.NewService(session.DefaultConfig(), sess),
		passwords: pwCfg,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		recorder:  NoopRecorder{},
	}
	hash, err := pwCfg.Hash(dummyPassword)
	if err != nil {
		t.Fatalf("dummy hash: %v", err)
	}
	h.dummyHash = hash

	mux := http.NewServeMux()
	h.Register(mux)

	return &testEnv{handler: h, ids: ids, sessions: sess, mux: mux}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error.Message
}

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register",
		`{"email":"alice@example.com","name":"Alice","password":"Str0ng!pass"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp messageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Message != "User created successfully!" {
		t.Fatalf("message = %q", resp.Message)
	}

	c := sessionCookie(t, w)
	if c.Value == "" {
		t.Fatalf("empty session cookie")
	}
	if !c.HttpOnly {
		t.Fatalf("cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("cookie SameSite = %v, want Lax", c.SameSite)
	}
	if c.Path != "/" {
		t.Fatalf("cookie path = %q", c.Path)
	}
	if c.Secure {
		t.Fatalf("cookie must not be Secure outside production")
	}

	// The cookie holds the raw token; the store is keyed by its digest.
	if _, ok := env.sessions.sessions[session.DeriveID(c.Value)]; !ok {
		t.Fatalf("no session row for issued token")
	}
	if _, ok := env.sessions.sessions[c.Value]; ok {
		t.Fatalf("raw token must not be a storage key")
	}

	// Stored hash is argon2id, never the plain password.
	u, err := env.ids.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if u.PasswordHash == nil || !strings.HasPrefix(*u.PasswordHash, "$argon2id$") {
		t.Fatalf("unexpected stored hash")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email":"alice@example.com","name":"Alice","password":"Str0ng!pass"}`
	if w := env.do(t, http.MethodPost, "/register", body); w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/register",
		`{"email":"ALICE@example.com","name":"Alice Again","password":"Str0ng!pass"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if msg := errorMessage(t, w); msg != "This email already exists." {
		t.Fatalf("message = %q", msg)
	}
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"bad email", `{"email":"not-an-email","name":"A","password":"Str0ng!pass"}`, "Invalid email address"},
		{"missing name", `{"email":"a@b.com","name":"","password":"Str0ng!pass"}`, "Name is required"},
		{"short password", `{"email":"a@b.com","name":"A","password":"S0!a"}`, "Password must be at least 8 characters long"},
		{"no symbol", `{"email":"a@b.com","name":"A","password":"Str0ngpass"}`, "Password must be at least 8 characters long"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/register", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
			if msg := errorMessage(t, w); msg != tc.msg {
				t.Fatalf("message = %q, want %q", msg, tc.msg)
			}
		})
	}
}

func TestRegister_UnknownFieldRejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register",
		`{"email":"a@b.com","name":"A","password":"Str0ng!pass","admin":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestDummyPasswordPassesPolicy(t *testing.T) {
	t.Parallel()

	// The dummy literal goes through Hash, which enforces the policy. A
	// rejected literal would leave dummyHash empty and quietly disable the
	// equalizing verify on login failure paths.
	if err := password.DefaultConfig().Validate(dummyPassword); err != nil {
		t.Fatalf("dummy password must satisfy the default policy: %v", err)
	}

	env := newTestEnv(t)
	if env.handler.dummyHash == "" {
		t.Fatal("dummy hash must be set at construction")
	}
	if !strings.HasPrefix(env.handler.dummyHash, "$argon2id$") {
		t.Fatalf("dummy hash not argon2id encoded: %q", env.handler.dummyHash)
	}
}

func TestSessionFromRequest_RenewalRefreshesCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register",
		`{"email":"renee@example.com","name":"Renee","password":"Str0ng!pass"}`)
	c := sessionCookie(t, w)

	// Move the stored session into the back half of its lifetime so the next
	// validation slides the expiry.
	for id, s := range env.sessions.sessions {
		s.ExpiresAt = time.Now().UTC().Add(24 * time.Hour)
		env.sessions.sessions[id] = s
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recipes/some-id", nil)
	req.AddCookie(c)

	res, ok := env.handler.SessionFromRequest(rec, req)
	if !ok {
		t.Fatal("session must validate on the optional-auth path")
	}
	if !res.Renewed {
		t.Fatal("session inside the renewal window must renew")
	}

	refreshed := sessionCookie(t, rec)
	if refreshed.Value != c.Value {
		t.Fatal("renewal must keep the same token")
	}
	if !refreshed.Expires.After(time.Now().Add(29 * 24 * time.Hour)) {
		t.Fatalf("cookie expiry not refreshed: %v", refreshed.Expires)
	}
}

func TestLogin_IndistinguishableFailures(t *testing.T) {
	env := newTestEnv(t)

	// One password account and one google-only account.
	if w := env.do(t, http.MethodPost, "/register",
		`{"email":"alice@example.com","name":"Alice","password":"Str0ng!pass"}`); w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}
	gid := "google-123"
	if _, err := env.ids.CreateUser(context.Background(), identity.CreateUserInput{
		Email:    "bob@example.com",
		Name:     "Bob",
		GoogleID: &gid,
		Now:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create google user: %v", err)
	}

	cases := []struct {
		name string
		body string
	}{
		{"unknown email", `{"email":"nobody@example.com","password":"Str0ng!pass"}`},
		{"wrong password", `{"email":"alice@example.com","password":"Wr0ng!pass"}`},
		{"google-only account", `{"email":"bob@example.com","password":"Str0ng!pass"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/login", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if msg := errorMessage(t, w); msg != "Invalid email or password" {
				t.Fatalf("message = %q", msg)
			}
		})
	}
}

func TestLogin_MalformedStoredHashLogged(t *testing.T) {
	env := newTestEnv(t)

	var buf strings.Builder
	env.handler.log = slog.New(slog.NewTextHandler(&buf, nil))

	bad := "not-an-argon2id-hash"
	if _, err := env.ids.CreateUser(context.Background(), identity.CreateUserInput{
		Email:        "mallory@example.com",
		Name:         "Mallory",
		PasswordHash: &bad,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w := env.do(t, http.MethodPost, "/login",
		`{"email":"mallory@example.com","password":"Str0ng!pass"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Invalid email or password" {
		t.Fatalf("message = %q", msg)
	}
	if !strings.Contains(buf.String(), "auth.login.verify.fail") {
		t.Fatalf("verify failure must be logged server-side:\n%s", buf.String())
	}
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodPost, "/register",
		`{"email":"alice@example.com","name":"Alice","password":"Str0ng!pass"}`); w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/login",
		`{"email":"Alice@Example.COM","password":"Str0ng!pass"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp messageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Message != "Login successful!" {
		t.Fatalf("message = %q", resp.Message)
	}

	c := sessionCookie(t, w)
	if _, ok := env.sessions.sessions[session.DeriveID(c.Value)]; !ok {
		t.Fatalf("no session row for issued token")
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register",
		`{"email":"alice@example.com","name":"Alice","password":"Str0ng!pass"}`)
	c := sessionCookie(t, w)

	w = env.do(t, http.MethodGet, "/me", "", c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp meResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.User.Email != "alice@example.com" || resp.User.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	for _, c := range []*http.Cookie{
		nil,
		{Name: "session", Value: "definitely-not-a-valid-token"},
	} {
		var w *httptest.ResponseRecorder
		if c == nil {
			w = env.do(t, http.MethodGet, "/me", "")
		} else {
			w = env.do(t, http.MethodGet, "/me", "", c)
		}
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		if msg := errorMessage(t, w); msg != "Unauthorized: Invalid session token." {
			t.Fatalf("message = %q", msg)
		}
	}
}

func TestLogout_AllDevices(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodPost, "/register",
		`{"email":"alice@example.com","name":"Alice","password":"Str0ng!pass"}`); w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}

	// Second device.
	w1 := env.do(t, http.MethodPost, "/login",
		`{"email":"alice@example.com","password":"Str0ng!pass"}`)
	c1 := sessionCookie(t, w1)
	w2 := env.do(t, http.MethodPost, "/login",
		`{"email":"alice@example.com","password":"Str0ng!pass"}`)
	c2 := sessionCookie(t, w2)

	w := env.do(t, http.MethodPost, "/logout", "", c1)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	cleared := sessionCookie(t, w)
	if cleared.Value != "" || cleared.MaxAge != -1 {
		t.Fatalf("logout must clear the cookie, got value=%q maxage=%d", cleared.Value, cleared.MaxAge)
	}

	// Both devices are out.
	for _, c := range []*http.Cookie{c1, c2} {
		if got := env.do(t, http.MethodGet, "/me", "", c); got.Code != http.StatusUnauthorized {
			t.Fatalf("status after logout = %d, want 401", got.Code)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct{ method, path string }{
		{http.MethodGet, "/register"},
		{http.MethodGet, "/login"},
		{http.MethodDelete, "/logout"},
		{http.MethodPost, "/me"},
	}

	for _, tc := range cases {
		w := env.do(t, tc.method, tc.path, "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: status = %d, want 405", tc.method, tc.path, w.Code)
		}
	}
}
