package quiz

import (
	"testing"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		percent float64
		want    Grade
	}{
		{100, GradeA},
		{90, GradeA},
		{89.999, GradeB},
		{80, GradeB},
		{79.999, GradeC},
		{70, GradeC},
		{60, GradeD},
		{59.999, GradeF},
		{0, GradeF},
	}
	for _, tt := range tests {
		if got := GradeFor(tt.percent); got != tt.want {
			t.Errorf("GradeFor(%v) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}

func TestBuildReview(t *testing.T) {
	quiz := sampleQuiz()
	open := model.Question{
		ID:       uuid.New(),
		Type:     model.QuestionTypeOpenEnded,
		Text:     "How do you track workouts?",
		Points:   4,
		OrderNum: 2,
	}
	quiz.Questions = append(quiz.Questions, open)

	s := NewSession(quiz, 42)
	s.Answer(quiz.Questions[0].ID, OptionAnswer(0)) // correct
	s.Answer(quiz.Questions[1].ID, OptionAnswer(1)) // wrong
	s.Answer(open.ID, TextAnswer("A notebook."))
	sub := s.Submit()

	review := BuildReview(quiz, sub)
	if len(review.Rows) != 3 {
		t.Fatalf("expected a row per question, got %d", len(review.Rows))
	}
	if review.Rows[0].Status != ReviewCorrect || review.Rows[0].PointsAwarded != 1 {
		t.Fatalf("expected first row correct with 1 point, got %+v", review.Rows[0])
	}
	if review.Rows[1].Status != ReviewIncorrect || review.Rows[1].PointsAwarded != 0 {
		t.Fatalf("expected second row incorrect, got %+v", review.Rows[1])
	}
	if review.Rows[2].Status != ReviewPending || review.Rows[2].PointsAwarded != 0 {
		t.Fatalf("expected open-ended row pending with 0 points, got %+v", review.Rows[2])
	}
	if review.CorrectCount != 1 || review.AutoGradedCount != 2 {
		t.Fatalf("expected 1/2 auto-graded correct, got %d/%d", review.CorrectCount, review.AutoGradedCount)
	}
	if review.Grade != GradeF {
		t.Fatalf("expected grade F for %v%%, got %s", review.ScorePercent, review.Grade)
	}
}

func TestBuildReviewPassBoundary(t *testing.T) {
	quiz := sampleQuiz()
	quiz.PassingScorePercent = 100

	s := NewSession(quiz, 42)
	s.Answer(quiz.Questions[0].ID, OptionAnswer(0))
	s.Answer(quiz.Questions[1].ID, OptionAnswer(0))
	sub := s.Submit()

	review := BuildReview(quiz, sub)
	if !review.Passed {
		t.Fatalf("a score exactly at the threshold must pass")
	}
}
