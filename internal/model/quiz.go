package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizStatus enumerates the lifecycle states of a quiz.
type QuizStatus string

const (
	QuizStatusDraft     QuizStatus = "DRAFT"
	QuizStatusPublished QuizStatus = "PUBLISHED"
	QuizStatusArchived  QuizStatus = "ARCHIVED"
)

// Quiz is an ordered assessment definition. Drafts are mutable through the
// builder; once published a quiz is immutable and becomes the input to taker
// sessions.
type Quiz struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AuthorID    int        `json:"author_id"`
	Questions   []Question `json:"questions,omitempty"`
	// TotalPoints is derived: always the sum of Points over Questions,
	// recomputed on every structural edit.
	TotalPoints         int        `json:"total_points"`
	TimeLimitMinutes    *int       `json:"time_limit_minutes,omitempty"`
	PassingScorePercent int        `json:"passing_score_percent"`
	Status              QuizStatus `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ComputeTotalPoints sums question points. Called after every question
// add/update/delete/reorder in the builder.
func ComputeTotalPoints(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}

// IsQuizSavable reports whether a quiz may be saved: a non-empty title and at
// least one question.
func IsQuizSavable(q *Quiz) bool {
	return q.Title != "" && len(q.Questions) > 0
}

// QuizPayload is the Redis-cached payload sent to members (no correct answers).
type QuizPayload struct {
	QuizID              uuid.UUID           `json:"quiz_id"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	TimeLimitMinutes    *int                `json:"time_limit_minutes,omitempty"`
	PassingScorePercent int                 `json:"passing_score_percent"`
	TotalPoints         int                 `json:"total_points"`
	Questions           []QuestionForMember `json:"questions"`
}

// QuestionForMember is a question stripped of its correct answer and
// explanation, safe to send to a member mid-session.
type QuestionForMember struct {
	ID       uuid.UUID    `json:"id"`
	Type     QuestionType `json:"type"`
	Text     string       `json:"text"`
	Points   int          `json:"points"`
	Options  []string     `json:"options,omitempty"`
	OrderNum int          `json:"order_num"`
}

// MemberPayload builds the member-facing view of a quiz.
func (q *Quiz) MemberPayload() QuizPayload {
	questions := make([]QuestionForMember, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = QuestionForMember{
			ID:       question.ID,
			Type:     question.Type,
			Text:     question.Text,
			Points:   question.Points,
			Options:  question.Options,
			OrderNum: question.OrderNum,
		}
	}
	return QuizPayload{
		QuizID:              q.ID,
		Title:               q.Title,
		Description:         q.Description,
		TimeLimitMinutes:    q.TimeLimitMinutes,
		PassingScorePercent: q.PassingScorePercent,
		TotalPoints:         q.TotalPoints,
		Questions:           questions,
	}
}

// CreateQuizRequest is the payload for creating a new draft quiz.
type CreateQuizRequest struct {
	Title               string `json:"title" binding:"required,min=1,max=255"`
	Description         string `json:"description" binding:"omitempty,max=2000"`
	TimeLimitMinutes    *int   `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	PassingScorePercent int    `json:"passing_score_percent" binding:"min=0,max=100"`
}

// UpdateQuizRequest is the payload for updating draft quiz metadata.
type UpdateQuizRequest struct {
	Title               *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description         *string `json:"description" binding:"omitempty,max=2000"`
	TimeLimitMinutes    *int    `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	PassingScorePercent *int    `json:"passing_score_percent" binding:"omitempty,min=0,max=100"`
}
