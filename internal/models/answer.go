package models

import (
	"time"

	"github.com/google/uuid"
)

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Answer keeps one voter-identifier set per direction instead of plain
// counters, so a repeat vote by the same user is a no-op. The exposed
// counts are the set sizes.
type Answer struct {
	ID           uuid.UUID `json:"id" db:"id"`
	QuestionID   uuid.UUID `json:"question_id" db:"question_id"`
	Text         string    `json:"text" db:"text"`
	UserID       string    `json:"user_id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpvoterIDs   []string  `json:"upvoter_ids" db:"upvoter_ids"`
	DownvoterIDs []string  `json:"downvoter_ids" db:"downvoter_ids"`
	IsAccepted   bool      `json:"is_accepted" db:"is_accepted"`
}

type CreateAnswerRequest struct {
	Text string `json:"text" binding:"required"`
}

type UpdateAnswerRequest struct {
	Text string `json:"text" binding:"required"`
}

type VoteRequest struct {
	Direction VoteDirection `json:"direction" binding:"required,oneof=up down"`
}

func (a *Answer) Upvotes() int {
	return len(a.UpvoterIDs)
}

func (a *Answer) Downvotes() int {
	return len(a.DownvoterIDs)
}

func (a *Answer) HasVoted(userID string, direction VoteDirection) bool {
	voters := a.UpvoterIDs
	if direction == VoteDown {
		voters = a.DownvoterIDs
	}
	for _, id := range voters {
		if id == userID {
			return true
		}
	}
	return false
}
