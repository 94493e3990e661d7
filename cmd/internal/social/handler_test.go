package social

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
	authapi "github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/api"
	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/session"
)

type fakeAuth struct {
	byToken map[string]session.Result
}

func (f *fakeAuth) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
			return
		}
		res, ok := f.byToken[c.Value]
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
			return
		}
		next(w, r.WithContext(authapi.ContextWithSession(r.Context(), res)))
	}
}

type favKey struct{ user, recipe string }
type pairKey struct{ a, b string }

// fakeStore is an in-memory Store. knownRecipes stands in for the recipes
// table's foreign keys.
type fakeStore struct {
	knownRecipes map[string]string // id -> title
	favorites    map[favKey]time.Time
	reviews      map[favKey]Review
	comments     []Comment
	subs         map[pairKey]Subscription
	seq          int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		knownRecipes: make(map[string]string),
		favorites:    make(map[favKey]time.Time),
		reviews:      make(map[favKey]Review),
		subs:         make(map[pairKey]Subscription),
	}
}

func (f *fakeStore) nextID(t time.Time) string {
	f.seq++
	id, _ := identity.NewULID(t.Add(time.Duration(f.seq) * time.Millisecond))
	return id
}

func (f *fakeStore) Favorite(_ context.Context, userID, recipeID string, now time.Time) error {
	if _, ok := f.knownRecipes[recipeID]; !ok {
		return ErrNotFound
	}
	k := favKey{userID, recipeID}
	if _, ok := f.favorites[k]; !ok {
		f.favorites[k] = now
	}
	return nil
}

func (f *fakeStore) Unfavorite(_ context.Context, userID, recipeID string) error {
	delete(f.favorites, favKey{userID, recipeID})
	return nil
}

func (f *fakeStore) ListFavorites(_ context.Context, userID string) ([]Favorite, error) {
	var out []Favorite
	for k, at := range f.favorites {
		if k.user == userID {
			out = append(out, Favorite{RecipeID: k.recipe, Title: f.knownRecipes[k.recipe], FavoritedAt: at})
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertReview(_ context.Context, in ReviewInput) (Review, error) {
	if _, ok := f.knownRecipes[in.RecipeID]; !ok {
		return Review{}, ErrNotFound
	}
	k := favKey{in.UserID, in.RecipeID}
	if prev, ok := f.reviews[k]; ok {
		prev.Rating = in.Rating
		prev.Comment = in.Comment
		prev.UpdatedAt = in.Now
		f.reviews[k] = prev
		return prev, nil
	}
	rv := Review{
		ID:        f.nextID(in.Now),
		UserID:    in.UserID,
		RecipeID:  in.RecipeID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: in.Now,
		UpdatedAt: in.Now,
	}
	f.reviews[k] = rv
	return rv, nil
}

func (f *fakeStore) ListReviews(_ context.Context, recipeID string) ([]Review, error) {
	var out []Review
	for _, rv := range f.reviews {
		if rv.RecipeID == recipeID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeStore) AddComment(_ context.Context, in CommentInput) (Comment, error) {
	if _, ok := f.knownRecipes[in.RecipeID]; !ok {
		return Comment{}, ErrNotFound
	}
	c := Comment{
		ID:        f.nextID(in.Now),
		UserID:    in.UserID,
		RecipeID:  in.RecipeID,
		Comment:   in.Comment,
		CreatedAt: in.Now,
		UpdatedAt: in.Now,
	}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeStore) ListComments(_ context.Context, recipeID string) ([]Comment, error) {
	var out []Comment
	for _, c := range f.comments {
		if c.RecipeID == recipeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) Subscribe(_ context.Context, subscriberID, creatorID string, now time.Time) (Subscription, error) {
	if subscriberID == creatorID {
		return Subscription{}, ErrSelfSubscribe
	}
	k := pairKey{subscriberID, creatorID}
	if sub, ok := f.subs[k]; ok {
		sub.IsActive = true
		sub.SubscriptionEndDate = nil
		sub.SubscribedAt = now
		f.subs[k] = sub
		return sub, nil
	}
	sub := Subscription{
		ID:           f.nextID(now),
		SubscriberID: subscriberID,
		CreatorID:    creatorID,
		SubscribedAt: now,
		IsActive:     true,
	}
	f.subs[k] = sub
	return sub, nil
}

func (f *fakeStore) Unsubscribe(_ context.Context, subscriberID, creatorID string, now time.Time) error {
	k := pairKey{subscriberID, creatorID}
	if sub, ok := f.subs[k]; ok && sub.IsActive {
		sub.IsActive = false
		sub.SubscriptionEndDate = &now
		f.subs[k] = sub
	}
	return nil
}

type testEnv struct {
	store *fakeStore
	mux   *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newFakeStore()
	store.knownRecipes["r1"] = "Shakshuka"

	auth := &fakeAuth{byToken: map[string]session.Result{
		"tok-alice": {User: identity.User{ID: "alice"}},
		"tok-bob":   {User: identity.User{ID: "bob"}},
	}}

	h := &Handler{
		log:          slog.New(slog.DiscardHandler),
		store:        store,
		auth:         auth,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		maxBodyBytes: 1 << 20,
	}

	mux := http.NewServeMux()
	h.Register(mux)

	return &testEnv{store: store, mux: mux}
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)
	return w
}

func TestFavorite_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	for range 2 {
		w := env.do(t, http.MethodPut, "/recipes/r1/favorite", "", "tok-alice")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
	}
	if len(env.store.favorites) != 1 {
		t.Fatalf("favorites = %d, want 1", len(env.store.favorites))
	}

	w := env.do(t, http.MethodGet, "/favorites", "", "tok-alice")
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var favs []Favorite
	if err := json.Unmarshal(w.Body.Bytes(), &favs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(favs) != 1 || favs[0].RecipeID != "r1" {
		t.Fatalf("unexpected favorites: %+v", favs)
	}
}

func TestFavorite_UnknownRecipe(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/recipes/nope/favorite", "", "tok-alice")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUnfavorite_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPut, "/recipes/r1/favorite", "", "tok-alice")
	for range 2 {
		w := env.do(t, http.MethodDelete, "/recipes/r1/favorite", "", "tok-alice")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
	if len(env.store.favorites) != 0 {
		t.Fatalf("favorites = %d, want 0", len(env.store.favorites))
	}
}

func TestReview_RatingBoundsAndUpsert(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"rating":0}`, `{"rating":6}`} {
		w := env.do(t, http.MethodPost, "/recipes/r1/reviews", body, "tok-alice")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("rating bounds: status = %d, want 400", w.Code)
		}
	}

	w := env.do(t, http.MethodPost, "/recipes/r1/reviews", `{"rating":4,"comment":"Nice"}`, "tok-alice")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	// Re-reviewing replaces, not duplicates.
	w = env.do(t, http.MethodPost, "/recipes/r1/reviews", `{"rating":2}`, "tok-alice")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/recipes/r1/reviews", "", "")
	var reviews []Review
	if err := json.Unmarshal(w.Body.Bytes(), &reviews); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Rating != 2 {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/recipes/r1/comments", `{"comment":"  "}`, "tok-alice")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank comment: status = %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodPost, "/recipes/r1/comments", `{"comment":"Lovely"}`, "tok-alice")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	// Listing is public.
	w = env.do(t, http.MethodGet, "/recipes/r1/comments", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var comments []Comment
	if err := json.Unmarshal(w.Body.Bytes(), &comments); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(comments) != 1 || comments[0].Comment != "Lovely" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}

func TestSubscribe_SelfIsRejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/creators/alice/subscribe", "", "tok-alice")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSubscribe_ResubscribeReactivates(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/creators/bob/subscribe", "", "tok-alice")
	if w.Code != http.StatusCreated {
		t.Fatalf("subscribe: status = %d", w.Code)
	}
	var sub Subscription
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	firstID := sub.ID

	if w := env.do(t, http.MethodDelete, "/creators/bob/subscribe", "", "tok-alice"); w.Code != http.StatusOK {
		t.Fatalf("unsubscribe: status = %d", w.Code)
	}
	if got := env.store.subs[pairKey{"alice", "bob"}]; got.IsActive || got.SubscriptionEndDate == nil {
		t.Fatalf("unsubscribe must deactivate and stamp end date: %+v", got)
	}

	w = env.do(t, http.MethodPost, "/creators/bob/subscribe", "", "tok-alice")
	if w.Code != http.StatusCreated {
		t.Fatalf("resubscribe: status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sub.ID != firstID {
		t.Fatalf("resubscribe must reuse the row, got new id")
	}
	if !sub.IsActive || sub.SubscriptionEndDate != nil {
		t.Fatalf("resubscribe must reactivate: %+v", sub)
	}
}

func TestSocial_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct{ method, path string }{
		{http.MethodPut, "/recipes/r1/favorite"},
		{http.MethodDelete, "/recipes/r1/favorite"},
		{http.MethodGet, "/favorites"},
		{http.MethodPost, "/recipes/r1/reviews"},
		{http.MethodPost, "/recipes/r1/comments"},
		{http.MethodPost, "/creators/bob/subscribe"},
		{http.MethodDelete, "/creators/bob/subscribe"},
	}

	for _, tc := range cases {
		w := env.do(t, tc.method, tc.path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status = %d, want 401", tc.method, tc.path, w.Code)
		}
	}
}
