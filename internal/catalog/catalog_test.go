package catalog

import (
	"math"
	"testing"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
)

func publishedQuiz(title, description string) model.Quiz {
	return model.Quiz{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      model.QuizStatusPublished,
	}
}

func submissionFor(quizID uuid.UUID, percent float64, passed bool) model.Submission {
	return model.Submission{
		ID:           uuid.New(),
		QuizID:       quizID,
		MemberID:     1,
		ScorePercent: percent,
		Passed:       passed,
	}
}

func TestCatalogSearch(t *testing.T) {
	c := New()
	hiit := publishedQuiz("HIIT Basics", "Interval training fundamentals")
	yoga := publishedQuiz("Yoga Flow", "Breathing and mobility work")
	c.Put(hiit)
	c.Put(yoga)

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"hiit", 1},
		{"BREATHING", 1},
		{"interval", 1},
		{"pilates", 0},
	}
	for _, tt := range tests {
		if got := len(c.List(tt.query, FilterAll)); got != tt.want {
			t.Errorf("List(%q) returned %d quizzes, want %d", tt.query, got, tt.want)
		}
	}

	// insertion order is stable
	all := c.List("", FilterAll)
	if all[0].ID != hiit.ID || all[1].ID != yoga.ID {
		t.Fatalf("expected insertion order preserved")
	}
}

func TestCatalogStatusFilters(t *testing.T) {
	c := New()
	attempted := publishedQuiz("Cardio Check", "")
	fresh := publishedQuiz("Core Day", "")
	c.Put(attempted)
	c.Put(fresh)
	c.AddSubmission(submissionFor(attempted.ID, 80, true))

	if got := c.List("", FilterCompleted); len(got) != 1 || got[0].ID != attempted.ID {
		t.Fatalf("completed filter: got %v", got)
	}
	if got := c.List("", FilterPending); len(got) != 1 || got[0].ID != fresh.ID {
		t.Fatalf("pending filter: got %v", got)
	}
	if got := c.List("", FilterAll); len(got) != 2 {
		t.Fatalf("all filter: got %d", len(got))
	}
}

func TestCatalogStatsForLatestWins(t *testing.T) {
	c := New()
	quiz := publishedQuiz("Nutrition 101", "")
	c.Put(quiz)

	if _, ok := c.StatsFor(quiz.ID); ok {
		t.Fatalf("expected no stats before any submission")
	}

	c.AddSubmission(submissionFor(quiz.ID, 90, true))
	c.AddSubmission(submissionFor(quiz.ID, 40, false))

	stats, ok := c.StatsFor(quiz.ID)
	if !ok {
		t.Fatalf("expected stats after submissions")
	}
	if stats.ScorePercent != 40 || stats.Passed {
		t.Fatalf("latest submission must win, got %+v", stats)
	}
	if stats.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", stats.Attempts)
	}
}

func TestCatalogOverview(t *testing.T) {
	c := New()
	a := publishedQuiz("A", "")
	b := publishedQuiz("B", "")
	untouched := publishedQuiz("C", "")
	c.Put(a)
	c.Put(b)
	c.Put(untouched)

	c.AddSubmission(submissionFor(a.ID, 50, false))
	c.AddSubmission(submissionFor(a.ID, 90, true)) // latest for A: passed
	c.AddSubmission(submissionFor(b.ID, 70, true))
	c.AddSubmission(submissionFor(b.ID, 40, false)) // latest for B: failed

	stats := c.Overview()
	if stats.TotalQuizzes != 3 || stats.AttemptedQuizzes != 2 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.PassedQuizzes != 1 {
		t.Fatalf("expected 1 passed quiz (latest wins), got %d", stats.PassedQuizzes)
	}
	// mean over every submission, not per-quiz latest: (50+90+70+40)/4
	if math.Abs(stats.AverageScorePercent-62.5) > 1e-9 {
		t.Fatalf("expected 62.5 average, got %v", stats.AverageScorePercent)
	}
}

func TestCatalogRemoveDropsSubmissions(t *testing.T) {
	c := New()
	quiz := publishedQuiz("Temp", "")
	c.Put(quiz)
	c.AddSubmission(submissionFor(quiz.ID, 100, true))

	c.Remove(quiz.ID)
	if _, ok := c.Get(quiz.ID); ok {
		t.Fatalf("expected quiz removed")
	}
	if got := c.Submissions(quiz.ID); len(got) != 0 {
		t.Fatalf("expected submissions dropped with the quiz, got %d", len(got))
	}
	if got := c.Overview().TotalQuizzes; got != 0 {
		t.Fatalf("expected empty catalog, got %d", got)
	}
}

func TestCatalogIgnoresSubmissionForUnknownQuiz(t *testing.T) {
	c := New()
	c.AddSubmission(submissionFor(uuid.New(), 100, true))
	if got := c.Overview().AttemptedQuizzes; got != 0 {
		t.Fatalf("unknown quiz submission must be ignored, got %d", got)
	}
}
