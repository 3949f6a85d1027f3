package post

import (
	"time"

	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/post"
	"github.com/spendsense/spendsense/internal/similarity"
)

type postResponse struct {
	ID         uuid.UUID       `json:"id"`
	GroupID    uuid.UUID       `json:"group_id"`
	UserID     uuid.UUID       `json:"user_id"`
	PosterName string          `json:"poster_name,omitempty"`
	ItemName   string          `json:"item_name"`
	ItemLink   string          `json:"item_link,omitempty"`
	Price      int64           `json:"price"`
	Reason     string          `json:"reason,omitempty"`
	ImagePath  string          `json:"image_path,omitempty"`
	Deadline   time.Time       `json:"deadline"`
	Status     post.Status     `json:"status"`
	Decision   post.Decision   `json:"decision,omitempty"`
	DecidedAt  *time.Time      `json:"decided_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Votes      *votesResponse  `json:"votes,omitempty"`
	Duplicate  *verdictPayload `json:"duplicate,omitempty"`
}

type votesResponse struct {
	Buy     int              `json:"buy"`
	DontBuy int              `json:"dont_buy"`
	Neutral int              `json:"neutral"`
	Ballots []ballotResponse `json:"ballots,omitempty"`
}

type ballotResponse struct {
	UserID    uuid.UUID     `json:"user_id"`
	VoterName string        `json:"voter_name,omitempty"`
	Kind      post.VoteKind `json:"kind"`
	Comment   string        `json:"comment,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type verdictPayload struct {
	Kind    similarity.Kind `json:"kind"`
	Matched string          `json:"matched,omitempty"`
}

func toResponse(p *post.Post) postResponse {
	return postResponse{
		ID:         p.ID,
		GroupID:    p.GroupID,
		UserID:     p.UserID,
		PosterName: p.PosterName,
		ItemName:   p.ItemName,
		ItemLink:   p.ItemLink,
		Price:      p.Price,
		Reason:     p.Reason,
		ImagePath:  p.ImagePath,
		Deadline:   p.Deadline,
		Status:     p.Status,
		Decision:   p.Decision,
		DecidedAt:  p.DecidedAt,
		CreatedAt:  p.CreatedAt,
	}
}

func toVerdict(v similarity.Verdict) *verdictPayload {
	return &verdictPayload{Kind: v.Kind, Matched: v.Matched}
}

func toVotes(counts post.VoteCounts, ballots []*post.Ballot) *votesResponse {
	resp := &votesResponse{
		Buy:     counts.Buy,
		DontBuy: counts.DontBuy,
		Neutral: counts.Neutral,
	}

	for _, b := range ballots {
		resp.Ballots = append(resp.Ballots, ballotResponse{
			UserID:    b.UserID,
			VoterName: b.VoterName,
			Kind:      b.Kind,
			Comment:   b.Comment,
			CreatedAt: b.CreatedAt,
		})
	}

	return resp
}
