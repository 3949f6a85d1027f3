package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/auth"
	"github.com/spendsense/spendsense/internal/images"
	"github.com/spendsense/spendsense/internal/user"
)

type Handler struct {
	users  *user.Service
	tokens *auth.TokenManager
	images *images.Store
}

func NewHandler(users *user.Service, tokens *auth.TokenManager, images *images.Store) *Handler {
	return &Handler{
		users:  users,
		tokens: tokens,
		images: images,
	}
}

// Routes are the public signup and login endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
}

// AccountRoutes requires an authenticated user.
func (h *Handler) AccountRoutes(r chi.Router) {
	r.Get("/", h.me)
	r.Delete("/", h.deleteAccount)
}

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.users.SignUp(r.Context(), user.SignUpParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}

		if errors.Is(err, user.ErrInvalidCredentials) {
			http.Error(w, "email and password are required", http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	h.respondWithToken(w, u, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	h.respondWithToken(w, u, http.StatusOK)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, u *user.User, status int) {
	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := authResponse{
		Token: token,
		User:  userResponse{ID: u.ID, Email: u.Email, Name: u.Name},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	u, err := h.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(userResponse{ID: u.ID, Email: u.Email, Name: u.Name}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	imagePaths, err := h.users.DeleteAccount(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	for _, p := range imagePaths {
		h.images.Remove(p)
	}

	w.WriteHeader(http.StatusNoContent)
}
