package quiz

import (
	"time"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
)

// Grade is a letter grade derived from a submission's score percentage.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeFor maps a score percentage to a letter grade. Bounds are inclusive
// on the lower edge: exactly 90 is an A, 89.999 is a B, and so on down to F.
func GradeFor(scorePercent float64) Grade {
	switch {
	case scorePercent >= 90:
		return GradeA
	case scorePercent >= 80:
		return GradeB
	case scorePercent >= 70:
		return GradeC
	case scorePercent >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// ReviewStatus is the graded outcome of one question in a review.
type ReviewStatus string

const (
	ReviewCorrect   ReviewStatus = "CORRECT"
	ReviewIncorrect ReviewStatus = "INCORRECT"
	// ReviewPending marks open-ended answers awaiting manual review; they
	// are never auto-marked correct or incorrect and award 0 automatically.
	ReviewPending ReviewStatus = "PENDING_REVIEW"
)

// ReviewRow pairs one question with the member's answer and its outcome.
type ReviewRow struct {
	Question      model.Question `json:"question"`
	Answer        model.Answer   `json:"answer"`
	Status        ReviewStatus   `json:"status"`
	PointsAwarded int            `json:"points_awarded"`
}

// Review is the read-only rendering of a (quiz, submission) pair.
type Review struct {
	QuizID          uuid.UUID   `json:"quiz_id"`
	SubmissionID    uuid.UUID   `json:"submission_id"`
	Rows            []ReviewRow `json:"rows"`
	CorrectCount    int         `json:"correct_count"`
	AutoGradedCount int         `json:"auto_graded_count"`
	Score           int         `json:"score"`
	ScorePercent    float64     `json:"score_percent"`
	Grade           Grade       `json:"grade"`
	Passed          bool        `json:"passed"`
	SubmittedAt     time.Time   `json:"submitted_at"`
}

// BuildReview derives the per-question review and aggregates for a completed
// submission. It mutates neither input.
func BuildReview(quiz model.Quiz, sub model.Submission) Review {
	byQuestion := make(map[uuid.UUID]model.Answer, len(sub.Answers))
	for _, a := range sub.Answers {
		byQuestion[a.QuestionID] = a
	}

	review := Review{
		QuizID:       quiz.ID,
		SubmissionID: sub.ID,
		Rows:         make([]ReviewRow, len(quiz.Questions)),
		Score:        sub.Score,
		ScorePercent: sub.ScorePercent,
		Grade:        GradeFor(sub.ScorePercent),
		Passed:       sub.Passed,
		SubmittedAt:  sub.SubmittedAt,
	}

	for i, q := range quiz.Questions {
		answer := byQuestion[q.ID]
		row := ReviewRow{Question: q, Answer: answer}
		if q.Type.AutoGraded() {
			review.AutoGradedCount++
			if answer.IsCorrect != nil && *answer.IsCorrect {
				row.Status = ReviewCorrect
				row.PointsAwarded = q.Points
				review.CorrectCount++
			} else {
				row.Status = ReviewIncorrect
			}
		} else {
			row.Status = ReviewPending
		}
		review.Rows[i] = row
	}

	return review
}
