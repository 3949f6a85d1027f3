package savings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spendsense/spendsense/internal/auth"
	"github.com/spendsense/spendsense/internal/savings"
)

type Handler struct {
	svc *savings.Service
}

func NewHandler(svc *savings.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

type savingsResponse struct {
	TotalSaved int64         `json:"total_saved"`
	Badge      savings.Badge `json:"badge"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	total, err := h.svc.Total(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := savingsResponse{
		TotalSaved: total,
		Badge:      savings.BadgeFor(total),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
