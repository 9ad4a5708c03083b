package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates taker session states. A session is IN_PROGRESS
// from the moment a member starts a quiz until it terminates in a submission.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusSubmitted  SessionStatus = "SUBMITTED"
)

// Answer is one member's input to one question within a session.
// IsCorrect is nil for open-ended questions, which are never auto-scored.
type Answer struct {
	QuestionID    uuid.UUID `json:"question_id"`
	SelectedIndex *int      `json:"selected_index,omitempty"`
	Text          string    `json:"text,omitempty"`
	IsCorrect     *bool     `json:"is_correct,omitempty"`
}

// Submission is the immutable record of one completed attempt. It is created
// exactly once per session (explicit submit or time expiry) and never
// mutated afterwards.
type Submission struct {
	ID       uuid.UUID `json:"id"`
	QuizID   uuid.UUID `json:"quiz_id"`
	MemberID int       `json:"member_id"`
	// Answers holds one entry per quiz question, in question order.
	Answers []Answer `json:"answers"`
	// Score is the sum of points over auto-graded questions answered
	// correctly; open-ended questions never contribute.
	Score int `json:"score"`
	// ScorePercent is Score/TotalPoints*100, and 0 when TotalPoints is 0.
	ScorePercent     float64   `json:"score_percent"`
	Passed           bool      `json:"passed"`
	StartedAt        time.Time `json:"started_at"`
	SubmittedAt      time.Time `json:"submitted_at"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
}

// QuizSession mirrors the persisted attempt row (member joins → submits).
type QuizSession struct {
	ID               uuid.UUID     `json:"id"`
	QuizID           uuid.UUID     `json:"quiz_id"`
	MemberID         int           `json:"member_id"`
	Status           SessionStatus `json:"status"`
	StartedAt        time.Time     `json:"started_at"`
	FinishedAt       *time.Time    `json:"finished_at,omitempty"`
	Score            *int          `json:"score,omitempty"`
	ScorePercent     *float64      `json:"score_percent,omitempty"`
	Passed           *bool         `json:"passed,omitempty"`
	TimeSpentSeconds *int          `json:"time_spent_seconds,omitempty"`
}

// AnswerRequest carries one answer upsert from a member. Exactly one of
// SelectedIndex or Text is meaningful, depending on the question type.
type AnswerRequest struct {
	QuestionID    string `json:"question_id" binding:"required,uuid"`
	SelectedIndex *int   `json:"selected_index" binding:"omitempty,min=0"`
	Text          string `json:"text" binding:"omitempty,max=10000"`
}
