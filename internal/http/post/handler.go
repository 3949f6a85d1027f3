package post

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
	"github.com/spendsense/spendsense/internal/post"
	"github.com/spendsense/spendsense/internal/similarity"
)

type Handler struct {
	svc    *post.Service
	groups *group.Service
	images *images.Store
}

func NewHandler(svc *post.Service, groups *group.Service, images *images.Store) *Handler {
	return &Handler{
		svc:    svc,
		groups: groups,
		images: images,
	}
}

// GroupRoutes is mounted under /groups/{id}/posts.
func (h *Handler) GroupRoutes(r chi.Router) {
	r.Get("/", h.listByGroup)
	r.Post("/", h.create)
}

// Routes is mounted under /posts.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/votes", h.vote)
	r.Post("/{id}/decision", h.decide)
	r.Post("/{id}/image", h.uploadImage)
}

// requireMember resolves the group ID from the URL and rejects callers who
// are not members. A zero UUID return means the response is already written.
func (h *Handler) requireMember(w http.ResponseWriter, r *http.Request) (groupID, userID uuid.UUID) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil
	}

	userID, _ = auth.UserID(r.Context())

	ok, err := h.groups.IsMember(r.Context(), groupID, userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return uuid.Nil, uuid.Nil
	}

	if !ok {
		http.Error(w, "not a member of this group", http.StatusForbidden)
		return uuid.Nil, uuid.Nil
	}

	return groupID, userID
}

func (h *Handler) listByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, _ := h.requireMember(w, r)
	if groupID == uuid.Nil {
		return
	}

	posts, err := h.svc.List(r.Context(), groupID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]postResponse, len(posts))

	for i, p := range posts {
		resp[i] = toResponse(p)

		counts, ballots, err := h.svc.VoteSummary(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp[i].Votes = toVotes(counts, ballots)

		if verdict := h.svc.Annotation(r.Context(), p); verdict.Kind == similarity.KindMatch {
			resp[i].Duplicate = toVerdict(verdict)
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type createPostRequest struct {
	ItemName          string `json:"item_name"`
	ItemLink          string `json:"item_link"`
	Price             int64  `json:"price"`
	Reason            string `json:"reason"`
	VotingWindowHours int    `json:"voting_window_hours"`
	SkipDuplicate     bool   `json:"skip_duplicate"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	groupID, userID := h.requireMember(w, r)
	if groupID == uuid.Nil {
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, verdict, err := h.svc.Create(r.Context(), post.CreateParams{
		GroupID:       groupID,
		UserID:        userID,
		ItemName:      req.ItemName,
		ItemLink:      req.ItemLink,
		Price:         req.Price,
		Reason:        req.Reason,
		VotingWindow:  time.Duration(req.VotingWindowHours) * time.Hour,
		SkipDuplicate: req.SkipDuplicate,
	})
	if err != nil {
		if errors.Is(err, post.ErrInvalidPost) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := toResponse(p)
	resp.Duplicate = toVerdict(verdict)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// loadForMember fetches the post and checks the caller belongs to its group.
func (h *Handler) loadForMember(w http.ResponseWriter, r *http.Request) (*post.Post, uuid.UUID) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, uuid.Nil
	}

	userID, _ := auth.UserID(r.Context())

	p, err := h.svc.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			http.Error(w, "post not found", http.StatusNotFound)
			return nil, uuid.Nil
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, uuid.Nil
	}

	ok, err := h.groups.IsMember(r.Context(), p.GroupID, userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, uuid.Nil
	}

	if !ok {
		http.Error(w, "not a member of this group", http.StatusForbidden)
		return nil, uuid.Nil
	}

	return p, userID
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := h.loadForMember(w, r)
	if p == nil {
		return
	}

	counts, ballots, err := h.svc.VoteSummary(r.Context(), p.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := toResponse(p)
	resp.Votes = toVotes(counts, ballots)

	if verdict := h.svc.Annotation(r.Context(), p); verdict.Kind == similarity.KindMatch {
		resp.Duplicate = toVerdict(verdict)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, userID := h.loadForMember(w, r)
	if p == nil {
		return
	}

	imagePath, err := h.svc.Delete(r.Context(), p.ID, userID)
	if err != nil {
		switch {
		case errors.Is(err, post.ErrNotPoster):
			http.Error(w, "only the poster may delete a post", http.StatusForbidden)
		case errors.Is(err, post.ErrNotPending):
			http.Error(w, "post is no longer pending", http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	h.images.Remove(imagePath)

	w.WriteHeader(http.StatusNoContent)
}

type voteRequest struct {
	Kind    post.VoteKind `json:"kind"`
	Comment string        `json:"comment"`
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request) {
	p, userID := h.loadForMember(w, r)
	if p == nil {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Vote(r.Context(), p.ID, userID, req.Kind, req.Comment); err != nil {
		switch {
		case errors.Is(err, post.ErrInvalidVote):
			http.Error(w, "vote must be buy, dont_buy or neutral", http.StatusBadRequest)
		case errors.Is(err, post.ErrOwnPost):
			http.Error(w, "cannot vote on your own post", http.StatusForbidden)
		case errors.Is(err, post.ErrVotingClosed):
			http.Error(w, "voting is closed", http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type decisionRequest struct {
	Decision post.Decision `json:"decision"`
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	p, userID := h.loadForMember(w, r)
	if p == nil {
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	decided, err := h.svc.Decide(r.Context(), p.ID, userID, req.Decision)
	if err != nil {
		switch {
		case errors.Is(err, post.ErrInvalidDecision):
			http.Error(w, "decision must be bought or skipped", http.StatusBadRequest)
		case errors.Is(err, post.ErrNotPoster):
			http.Error(w, "only the poster may decide", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(decided)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	p, userID := h.loadForMember(w, r)
	if p == nil {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if p.UserID != userID {
		http.Error(w, "only the poster may attach an image", http.StatusForbidden)
		return
	}

	path, err := h.images.Save(p.ID, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.AttachImage(r.Context(), p.ID, userID, path); err != nil {
		h.images.Remove(path)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusOK)
}
