package group

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/auth"
	"github.com/spendsense/spendsense/internal/group"
	"github.com/spendsense/spendsense/internal/images"
)

type Handler struct {
	svc    *group.Service
	images *images.Store
}

func NewHandler(svc *group.Service, images *images.Store) *Handler {
	return &Handler{svc: svc, images: images}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/join", h.join)
	r.Get("/{id}/members", h.members)
	r.Delete("/{id}", h.delete)
}

type groupResponse struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(g *group.Group) groupResponse {
	return groupResponse{
		ID:         g.ID,
		OwnerID:    g.OwnerID,
		Name:       g.Name,
		InviteCode: g.InviteCode,
		CreatedAt:  g.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	groups, err := h.svc.ListForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]groupResponse, len(groups))
	for i, g := range groups {
		resp[i] = toResponse(g)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type createGroupRequest struct {
	Name      string `json:"name"`
	ShortCode bool   `json:"short_code"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := h.svc.Create(r.Context(), userID, req.Name, req.ShortCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(g)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type joinGroupRequest struct {
	InviteCode string `json:"invite_code"`
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req joinGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := h.svc.Join(r.Context(), userID, req.InviteCode)
	if err != nil {
		if errors.Is(err, group.ErrInvalidInvite) {
			http.Error(w, "invalid invite code", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(g)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type memberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	userID, _ := auth.UserID(r.Context())

	ok, err := h.svc.IsMember(r.Context(), groupID, userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !ok {
		http.Error(w, "not a member of this group", http.StatusForbidden)
		return
	}

	members, err := h.svc.Members(r.Context(), groupID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]memberResponse, len(members))
	for i, m := range members {
		resp[i] = memberResponse{
			UserID:   m.UserID,
			Email:    m.Email,
			Name:     m.Name,
			JoinedAt: m.JoinedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	userID, _ := auth.UserID(r.Context())

	imagePaths, err := h.svc.Delete(r.Context(), groupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, group.ErrNotFound):
			http.Error(w, "group not found", http.StatusNotFound)
		case errors.Is(err, group.ErrNotOwner):
			http.Error(w, "only the owner may delete a group", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	for _, p := range imagePaths {
		h.images.Remove(p)
	}

	w.WriteHeader(http.StatusNoContent)
}
