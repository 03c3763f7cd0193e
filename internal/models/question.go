package models

import (
	"time"

	"github.com/google/uuid"
)

const MaxTags = 5

type Question struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Tags        []string  `json:"tags" db:"tags"`
	UserID      string    `json:"user_id" db:"user_id"`
	Username    string    `json:"username" db:"username"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	AnswerCount int       `json:"answer_count" db:"answer_count"`
	IsSolved    bool      `json:"is_solved" db:"is_solved"`
}

type CreateQuestionRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Tags        []string `json:"tags" binding:"required"`
}
