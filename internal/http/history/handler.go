package history

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/auth"
	"github.com/spendsense/spendsense/internal/group"
	"github.com/spendsense/spendsense/internal/history"
)

type Handler struct {
	svc    *history.Service
	groups *group.Service
}

func NewHandler(svc *history.Service, groups *group.Service) *Handler {
	return &Handler{svc: svc, groups: groups}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import", h.importCSV)
}

type skippedRowDTO struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importResponse struct {
	Imported int             `json:"imported"`
	Skipped  []skippedRowDTO `json:"skipped,omitempty"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	groupID, err := uuid.Parse(r.FormValue("group_id"))
	if err != nil {
		http.Error(w, "group_id field is required", http.StatusBadRequest)
		return
	}

	userID, _ := auth.UserID(r.Context())

	ok, err := h.groups.IsMember(r.Context(), groupID, userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !ok {
		http.Error(w, "not a member of this group", http.StatusForbidden)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.svc.Import(r.Context(), groupID, userID, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := importResponse{Imported: result.Imported}
	for _, rowErr := range result.Skipped {
		resp.Skipped = append(resp.Skipped, skippedRowDTO{
			Line:  rowErr.Line,
			Error: rowErr.Err.Error(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
