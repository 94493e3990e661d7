package social

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	authapi "github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/api"
)

// Authenticator is the slice of the auth handler this package needs.
type Authenticator interface {
	RequireSession(next http.HandlerFunc) http.HandlerFunc
}

// Handler wires social HTTP endpoints to the store.
type Handler struct {
	log   *slog.Logger
	store Store
	auth  Authenticator

	validate     *validator.Validate
	maxBodyBytes int64
}

// NewHandler constructs a social Handler over the given pool.
func NewHandler(log *slog.Logger, pool *pgxpool.Pool, auth Authenticator, maxBodyBytes int64) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if auth == nil {
		return nil, errors.New("social: nil auth handler")
	}
	store, err := NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Handler{
		log:          log,
		store:        store,
		auth:         auth,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		maxBodyBytes: maxBodyBytes,
	}, nil
}

// Register wires social routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("PUT /recipes/{id}/favorite", h.auth.RequireSession(h.handleFavorite))
	mux.HandleFunc("DELETE /recipes/{id}/favorite", h.auth.RequireSession(h.handleUnfavorite))
	mux.HandleFunc("GET /favorites", h.auth.RequireSession(h.handleListFavorites))

	mux.HandleFunc("POST /recipes/{id}/reviews", h.auth.RequireSession(h.handleReview))
	mux.HandleFunc("GET /recipes/{id}/reviews", h.handleListReviews)

	mux.HandleFunc("POST /recipes/{id}/comments", h.auth.RequireSession(h.handleComment))
	mux.HandleFunc("GET /recipes/{id}/comments", h.handleListComments)

	mux.HandleFunc("POST /creators/{id}/subscribe", h.auth.RequireSession(h.handleSubscribe))
	mux.HandleFunc("DELETE /creators/{id}/subscribe", h.auth.RequireSession(h.handleUnsubscribe))
}

type reviewRequest struct {
	Rating  int     `json:"rating" validate:"gte=1,lte=5"`
	Comment *string `json:"comment"`
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required,min=1"`
}

// ---- favorites ----

func (h *Handler) handleFavorite(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}
	recipeID := r.PathValue("id")

	err := h.store.Favorite(r.Context(), res.User.ID, recipeID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "No recipes found."})
			return
		}
		h.log.Error("social.favorite.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Recipe favorited."})
}

func (h *Handler) handleUnfavorite(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}
	recipeID := r.PathValue("id")

	if err := h.store.Unfavorite(r.Context(), res.User.ID, recipeID); err != nil {
		h.log.Error("social.unfavorite.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Recipe unfavorited."})
}

func (h *Handler) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}

	favorites, err := h.store.ListFavorites(r.Context(), res.User.ID)
	if err != nil {
		h.log.Error("social.favorites.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	if favorites == nil {
		favorites = []Favorite{}
	}

	writeJSON(w, http.StatusOK, favorites)
}

// ---- reviews ----

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}
	recipeID := r.PathValue("id")

	var req reviewRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Rating must be between 1 and 5")
		return
	}
	if req.Comment != nil && strings.TrimSpace(*req.Comment) == "" {
		req.Comment = nil
	}

	review, err := h.store.UpsertReview(r.Context(), ReviewInput{
		UserID:   res.User.ID,
		RecipeID: recipeID,
		Rating:   req.Rating,
		Comment:  req.Comment,
		Now:      time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "No recipes found."})
			return
		}
		h.log.Error("social.review.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	recipeID := r.PathValue("id")

	reviews, err := h.store.ListReviews(r.Context(), recipeID)
	if err != nil {
		h.log.Error("social.reviews.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	if reviews == nil {
		reviews = []Review{}
	}

	writeJSON(w, http.StatusOK, reviews)
}

// ---- comments ----

func (h *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}
	recipeID := r.PathValue("id")

	var req commentRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil || strings.TrimSpace(req.Comment) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Comment cannot be empty")
		return
	}

	comment, err := h.store.AddComment(r.Context(), CommentInput{
		UserID:   res.User.ID,
		RecipeID: recipeID,
		Comment:  strings.TrimSpace(req.Comment),
		Now:      time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "No recipes found."})
			return
		}
		h.log.Error("social.comment.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	recipeID := r.PathValue("id")

	comments, err := h.store.ListComments(r.Context(), recipeID)
	if err != nil {
		h.log.Error("social.comments.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	if comments == nil {
		comments = []Comment{}
	}

	writeJSON(w, http.StatusOK, comments)
}

// ---- subscriptions ----

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}
	creatorID := r.PathValue("id")

	sub, err := h.store.Subscribe(r.Context(), res.User.ID, creatorID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfSubscribe):
			writeError(w, http.StatusBadRequest, "invalid_request", "You cannot subscribe to yourself.")
		case errors.Is(err, ErrNotFound):
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "Creator not found."})
		default:
			h.log.Error("social.subscribe.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}
	creatorID := r.PathValue("id")

	if err := h.store.Unsubscribe(r.Context(), res.User.ID, creatorID, time.Now().UTC()); err != nil {
		h.log.Error("social.unsubscribe.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Unsubscribed."})
}
