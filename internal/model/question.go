package model

import (
	"fmt"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionTypeOpenEnded      QuestionType = "OPEN_ENDED"
)

// AutoGraded reports whether correctness for this type is determined by
// comparing the stored correct index with the member's selection. Open-ended
// questions always require manual review.
func (t QuestionType) AutoGraded() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// TrueFalseOptions is the fixed option pair every TRUE_FALSE question carries.
var TrueFalseOptions = []string{"True", "False"}

// Question represents a single evaluable quiz item.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	QuizID       uuid.UUID    `json:"quiz_id"`
	Type         QuestionType `json:"type"`
	Text         string       `json:"text"`
	Points       int          `json:"points"`
	Options      []string     `json:"options,omitempty"`
	CorrectIndex *int         `json:"correct_index,omitempty"`
	Explanation  string       `json:"explanation,omitempty"`
	OrderNum     int          `json:"order_num"`
}

// NewQuestion returns a question of the given type with default content:
// two empty options for multiple choice, the fixed True/False pair with no
// correct index preselected for true/false, no options for open-ended.
// Points default to 1.
func NewQuestion(t QuestionType) Question {
	q := Question{
		ID:     uuid.New(),
		Type:   t,
		Points: 1,
	}
	switch t {
	case QuestionTypeMultipleChoice:
		q.Options = []string{"", ""}
	case QuestionTypeTrueFalse:
		q.Options = append([]string(nil), TrueFalseOptions...)
	}
	return q
}

// ValidateQuestion checks the per-type invariants and returns a map of
// field name → problem description. A nil map means the question is valid.
// Violations are reported, never panicked on; the builder surfaces them as
// disabled actions.
func ValidateQuestion(q Question) map[string]string {
	fields := make(map[string]string)

	if q.Text == "" {
		fields["text"] = "question text is required"
	}
	if q.Points <= 0 {
		fields["points"] = "points must be a positive integer"
	}

	switch q.Type {
	case QuestionTypeMultipleChoice:
		if len(q.Options) < 2 {
			fields["options"] = "multiple-choice questions need at least 2 options"
		}
		validateCorrectIndex(q, fields)
	case QuestionTypeTrueFalse:
		if len(q.Options) != 2 || q.Options[0] != TrueFalseOptions[0] || q.Options[1] != TrueFalseOptions[1] {
			fields["options"] = "true/false questions carry exactly the fixed True/False pair"
		}
		validateCorrectIndex(q, fields)
	case QuestionTypeOpenEnded:
		if len(q.Options) != 0 {
			fields["options"] = "open-ended questions have no options"
		}
		if q.CorrectIndex != nil {
			fields["correct_index"] = "open-ended questions have no correct answer index"
		}
	default:
		fields["type"] = fmt.Sprintf("unknown question type %q", q.Type)
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func validateCorrectIndex(q Question, fields map[string]string) {
	if q.CorrectIndex == nil {
		fields["correct_index"] = "a correct answer index is required"
		return
	}
	if *q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Options) {
		fields["correct_index"] = "correct answer index is out of range"
	}
}

// AddQuestionRequest is the payload for appending a question to a draft quiz.
type AddQuestionRequest struct {
	Type string `json:"type" binding:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE OPEN_ENDED"`
}

// UpdateQuestionRequest carries a partial question edit. Nil fields are
// left untouched.
type UpdateQuestionRequest struct {
	Text         *string `json:"text" binding:"omitempty,max=2000"`
	Points       *int    `json:"points" binding:"omitempty,min=1,max=100"`
	CorrectIndex *int    `json:"correct_index" binding:"omitempty,min=0"`
	Explanation  *string `json:"explanation" binding:"omitempty,max=2000"`
}

// UpdateOptionRequest sets the text of one option.
type UpdateOptionRequest struct {
	Value string `json:"value" binding:"max=500"`
}

// MoveQuestionRequest reorders a question one position up or down.
type MoveQuestionRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}
