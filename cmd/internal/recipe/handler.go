package recipe

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	authapi "github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/api"
	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/auth/session"
)

// Authenticator is the slice of the auth handler this package needs: the
// session middleware and the optional-auth lookup.
type Authenticator interface {
	RequireSession(next http.HandlerFunc) http.HandlerFunc
	SessionFromRequest(w http.ResponseWriter, r *http.Request) (session.Result, bool)
}

// Handler wires recipe HTTP endpoints to the store. Authentication is
// delegated to the auth handler's session middleware.
type Handler struct {
	log   *slog.Logger
	store Store
	auth  Authenticator

	validate     *validator.Validate
	maxBodyBytes int64
}

// NewHandler constructs a recipe Handler over the given pool.
func NewHandler(log *slog.Logger, pool *pgxpool.Pool, auth Authenticator, maxBodyBytes int64) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if auth == nil {
		return nil, errors.New("recipe: nil auth handler")
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

// Register wires recipe routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("GET /recipes", h.handleList)
	mux.HandleFunc("POST /recipes", h.auth.RequireSession(h.handleCreate))
	mux.HandleFunc("GET /recipes/{id}", h.handleGet)
	mux.HandleFunc("PATCH /recipes/{id}", h.auth.RequireSession(h.handleUpdate))
	mux.HandleFunc("DELETE /recipes/{id}", h.auth.RequireSession(h.handleDelete))
}

// ---- handlers ----

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 20
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			writeError(w, http.StatusBadRequest, "invalid_request", "Limit must be between 1 and 50")
			return
		}
		limit = n
	}
	cursor := strings.TrimSpace(q.Get("cursor"))

	recipes, err := h.store.ListPublic(r.Context(), cursor, limit)
	if err != nil {
		h.log.Error("recipe.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	if len(recipes) == 0 {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "No recipes found."})
		return
	}

	writeJSON(w, http.StatusOK, recipes)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}

	var req createRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", firstValidationMessage(err))
		return
	}

	created, err := h.store.Create(r.Context(), CreateInput{
		CreatorID:    res.User.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		ImageURLs:    req.ImageURLs,
		Servings:     req.Servings,
		TotalTime:    req.TotalTime,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		IsPublic:     req.IsPublic,
		Now:          time.Now().UTC(),
	})
	if err != nil {
		h.log.Error("recipe.create.fail", "err", err, "user_id", res.User.ID)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.log.Info("recipe.create.ok", "recipe_id", created.ID, "user_id", res.User.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "No recipes found."})
			return
		}
		h.log.Error("recipe.get.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	viewerID := ""
	if res, ok := h.auth.SessionFromRequest(w, r); ok {
		viewerID = res.User.ID
	}
	// A private recipe looks exactly like a missing one to anyone but its
	// creator.
	if !rec.Visible(viewerID) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "No recipes found."})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}
	id := r.PathValue("id")

	rec, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "No recipes found."})
			return
		}
		h.log.Error("recipe.update.load.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	if !rec.OwnedBy(res.User.ID) {
		writeError(w, http.StatusForbidden, "forbidden", "You do not own this recipe.")
		return
	}

	var req updateRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", firstValidationMessage(err))
		return
	}

	updated, err := h.store.Update(r.Context(), id, UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		ImageURLs:    req.ImageURLs,
		Servings:     req.Servings,
		TotalTime:    req.TotalTime,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		IsPublic:     req.IsPublic,
		Now:          time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "No recipes found."})
			return
		}
		h.log.Error("recipe.update.fail", "err", err, "recipe_id", id)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	res, ok := authapi.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: Invalid session token.")
		return
	}
	id := r.PathValue("id")

	rec, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "No recipes found."})
			return
		}
		h.log.Error("recipe.delete.load.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	if !rec.OwnedBy(res.User.ID) {
		writeError(w, http.StatusForbidden, "forbidden", "You do not own this recipe.")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil && !errors.Is(err, ErrRecipeNotFound) {
		h.log.Error("recipe.delete.fail", "err", err, "recipe_id", id)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.log.Info("recipe.delete.ok", "recipe_id", id, "user_id", res.User.ID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Recipe deleted successfully."})
}

// ---- validation messages ----

// firstValidationMessage reports the first failing field in the wording the
// web client expects.
func firstValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid input"
	}
	fe := verrs[0]

	// Slice elements report as "Field[i]"; strip the index.
	field := fe.StructField()
	indexed := false
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
		indexed = true
	}

	switch field {
	case "Title":
		return "Title is required"
	case "Servings":
		return "Servings must be at least 1"
	case "TotalTime":
		return "Total time must be at least 1 minute"
	case "Ingredients":
		return "At least one ingredient is required"
	case "Instructions":
		if indexed {
			return "Instruction cannot be empty"
		}
		return "At least one instruction is required"
	case "Name":
		return "Ingredient name cannot be empty"
	case "Quantity":
		return "Quantity must be a positive number"
	case "Unit":
		if fe.Tag() == "oneof" {
			return "Unit must be one of: " + strings.Join(Units, ", ")
		}
		return "Unit is required"
	case "ImageURLs":
		return "Image URLs must be valid URLs"
	}
	return field + " is invalid"
}
