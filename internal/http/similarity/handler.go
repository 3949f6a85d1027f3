package similarity

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spendsense/spendsense/internal/auth"
	"github.com/spendsense/spendsense/internal/post"
	"github.com/spendsense/spendsense/internal/similarity"
)

// Handler exposes the duplicate detector as an advisory pre-check so
// clients can show the nudge while the user is still typing.
type Handler struct {
	posts *post.Service
}

func NewHandler(posts *post.Service) *Handler {
	return &Handler{posts: posts}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/check", h.check)
}

type checkResponse struct {
	Kind    similarity.Kind `json:"kind"`
	Matched string          `json:"matched,omitempty"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	item := r.URL.Query().Get("item")
	if item == "" {
		http.Error(w, "item query parameter is required", http.StatusBadRequest)
		return
	}

	userID, _ := auth.UserID(r.Context())

	verdict, err := h.posts.CheckDuplicate(r.Context(), userID, item)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(checkResponse{
		Kind:    verdict.Kind,
		Matched: verdict.Matched,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
