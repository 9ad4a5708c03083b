package quiz

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
	"go.uber.org/goleak"
)

// fakeClock is a manually advanced clock for deterministic elapsed time.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func sampleQuiz() model.Quiz {
	return model.Quiz{
		ID:                  uuid.New(),
		Title:               "Strength Fundamentals",
		PassingScorePercent: 70,
		Questions: []model.Question{
			{
				ID:           uuid.New(),
				Type:         model.QuestionTypeMultipleChoice,
				Text:         "Which lift primarily targets the posterior chain?",
				Points:       1,
				Options:      []string{"Deadlift", "Bench press", "Overhead press"},
				CorrectIndex: intPtr(0),
				OrderNum:     0,
			},
			{
				ID:           uuid.New(),
				Type:         model.QuestionTypeTrueFalse,
				Text:         "Progressive overload drives strength gains.",
				Points:       2,
				Options:      []string{"True", "False"},
				CorrectIndex: intPtr(0),
				OrderNum:     1,
			},
		},
	}
}

func TestSessionAllCorrect(t *testing.T) {
	quiz := sampleQuiz()
	s := NewSession(quiz, 42)

	s.Answer(quiz.Questions[0].ID, OptionAnswer(0))
	s.Next()
	s.Answer(quiz.Questions[1].ID, OptionAnswer(0))

	sub := s.Submit()
	if sub.Score != 3 {
		t.Fatalf("expected score 3, got %d", sub.Score)
	}
	if sub.ScorePercent != 100 {
		t.Fatalf("expected 100%%, got %v", sub.ScorePercent)
	}
	if !sub.Passed {
		t.Fatalf("expected passed at 100%% with 70%% threshold")
	}
	if got := GradeFor(sub.ScorePercent); got != GradeA {
		t.Fatalf("expected grade A, got %s", got)
	}
	if s.State() != StateSubmitted {
		t.Fatalf("expected submitted state, got %s", s.State())
	}
}

func TestSessionPartiallyCorrect(t *testing.T) {
	quiz := sampleQuiz()
	s := NewSession(quiz, 42)

	s.Answer(quiz.Questions[0].ID, OptionAnswer(0)) // correct, 1 point
	s.Answer(quiz.Questions[1].ID, OptionAnswer(1)) // wrong

	sub := s.Submit()
	if sub.Score != 1 {
		t.Fatalf("expected score 1, got %d", sub.Score)
	}
	if math.Abs(sub.ScorePercent-100.0/3.0) > 1e-9 {
		t.Fatalf("expected 33.33...%%, got %v", sub.ScorePercent)
	}
	if sub.Passed {
		t.Fatalf("expected not passed below threshold")
	}
	if got := GradeFor(sub.ScorePercent); got != GradeF {
		t.Fatalf("expected grade F, got %s", got)
	}
}

func TestSessionUnansweredScoredIncorrect(t *testing.T) {
	quiz := sampleQuiz()
	s := NewSession(quiz, 42)

	sub := s.Submit()
	if sub.Score != 0 {
		t.Fatalf("expected 0 score, got %d", sub.Score)
	}
	for _, a := range sub.Answers {
		if a.IsCorrect == nil || *a.IsCorrect {
			t.Fatalf("unanswered auto-graded question must be marked incorrect: %+v", a)
		}
	}
}

func TestSessionOpenEndedNeverAutoGraded(t *testing.T) {
	quiz := sampleQuiz()
	open := model.Question{
		ID:       uuid.New(),
		Type:     model.QuestionTypeOpenEnded,
		Text:     "Describe one recovery technique you use.",
		Points:   5,
		OrderNum: 2,
	}
	quiz.Questions = append(quiz.Questions, open)

	s := NewSession(quiz, 42)
	s.Answer(quiz.Questions[0].ID, OptionAnswer(0))
	s.Answer(quiz.Questions[1].ID, OptionAnswer(0))
	s.Answer(open.ID, TextAnswer("Foam rolling after every session."))

	sub := s.Submit()
	if sub.Score != 3 {
		t.Fatalf("open-ended answers must contribute 0 points, got score %d", sub.Score)
	}
	// total points includes the open-ended question, so 3/8
	if math.Abs(sub.ScorePercent-37.5) > 1e-9 {
		t.Fatalf("expected 37.5%%, got %v", sub.ScorePercent)
	}
	last := sub.Answers[2]
	if last.IsCorrect != nil {
		t.Fatalf("open-ended IsCorrect must stay nil, got %v", *last.IsCorrect)
	}
	if last.Text != "Foam rolling after every session." {
		t.Fatalf("expected recorded text, got %q", last.Text)
	}
}

func TestSessionZeroTotalPoints(t *testing.T) {
	quiz := model.Quiz{
		ID:                  uuid.New(),
		PassingScorePercent: 70,
		Questions: []model.Question{
			{ID: uuid.New(), Type: model.QuestionTypeOpenEnded, Text: "Thoughts?", Points: 0},
		},
	}
	s := NewSession(quiz, 42)
	sub := s.Submit()
	if sub.ScorePercent != 0 {
		t.Fatalf("expected 0%% when the quiz carries no points, got %v", sub.ScorePercent)
	}
}

func TestSessionAnswerLastWriteWins(t *testing.T) {
	quiz := sampleQuiz()
	s := NewSession(quiz, 42)

	qid := quiz.Questions[0].ID
	s.Answer(qid, OptionAnswer(1))
	s.Answer(qid, OptionAnswer(0))

	sub := s.Submit()
	if got := sub.Answers[0].SelectedIndex; got == nil || *got != 0 {
		t.Fatalf("expected last answer to win, got %v", got)
	}
	if sub.Score != 1 {
		t.Fatalf("expected corrected answer scored, got %d", sub.Score)
	}
}

func TestSessionAnswerIgnoresUnknownQuestion(t *testing.T) {
	quiz := sampleQuiz()
	s := NewSession(quiz, 42)
	s.Answer(uuid.New(), OptionAnswer(0))
	if got := len(s.Answers()); got != 0 {
		t.Fatalf("expected unknown question id ignored, got %d answers", got)
	}
}

func TestSessionNavigationClamps(t *testing.T) {
	quiz := sampleQuiz()
	s := NewSession(quiz, 42)

	s.Previous()
	if s.CurrentIndex() != 0 {
		t.Fatalf("previous at first question must stay put")
	}
	s.Next()
	s.Next()
	s.Next()
	if s.CurrentIndex() != 1 {
		t.Fatalf("next at last question must stay put, got %d", s.CurrentIndex())
	}
	s.GoTo(99)
	if s.CurrentIndex() != 1 {
		t.Fatalf("out-of-range jump must be ignored, got %d", s.CurrentIndex())
	}
	s.GoTo(0)
	if s.CurrentIndex() != 0 {
		t.Fatalf("in-range jump must land, got %d", s.CurrentIndex())
	}

	// navigating never discards answers
	s.Answer(quiz.Questions[0].ID, OptionAnswer(2))
	s.Next()
	s.Previous()
	if got := len(s.Answers()); got != 1 {
		t.Fatalf("navigation must keep answers, got %d", got)
	}
}

func TestSessionTimerForcesSubmit(t *testing.T) {
	quiz := sampleQuiz()
	limit := 1
	quiz.TimeLimitMinutes = &limit

	clock := &fakeClock{current: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	var delivered *model.Submission
	s := NewSession(quiz, 42,
		WithClock(clock.Now),
		WithSubmitHandler(func(sub model.Submission) { delivered = &sub }),
	)

	s.Answer(quiz.Questions[1].ID, OptionAnswer(0))

	if s.RemainingSeconds() != 60 {
		t.Fatalf("expected 60s countdown, got %d", s.RemainingSeconds())
	}
	for i := 0; i < 60; i++ {
		clock.Advance(time.Second)
		s.Tick()
	}

	if s.State() != StateSubmitted {
		t.Fatalf("expected forced submit at zero, got %s", s.State())
	}
	if s.RemainingSeconds() != 0 {
		t.Fatalf("expected countdown pinned at 0, got %d", s.RemainingSeconds())
	}
	if delivered == nil {
		t.Fatalf("expected submit handler fired on expiry")
	}
	if delivered.Score != 2 {
		t.Fatalf("expected partial answers scored on expiry, got %d", delivered.Score)
	}
	if delivered.TimeSpentSeconds != 60 {
		t.Fatalf("expected 60s spent, got %d", delivered.TimeSpentSeconds)
	}

	// further ticks and answers are dead
	s.Tick()
	s.Answer(quiz.Questions[0].ID, OptionAnswer(0))
	if sub, _ := s.Submission(); sub.Score != 2 {
		t.Fatalf("post-submit activity must not change the submission")
	}
}

func TestSessionSubmitIdempotent(t *testing.T) {
	quiz := sampleQuiz()
	calls := 0
	s := NewSession(quiz, 42, WithSubmitHandler(func(model.Submission) { calls++ }))

	s.Answer(quiz.Questions[0].ID, OptionAnswer(0))
	first := s.Submit()
	second := s.Submit()

	if first.ID != second.ID {
		t.Fatalf("second submit must return the first submission")
	}
	if calls != 1 {
		t.Fatalf("submit handler must fire exactly once, fired %d times", calls)
	}
}

func TestSessionUntimedNeverTicks(t *testing.T) {
	quiz := sampleQuiz()
	s := NewSession(quiz, 42)
	if s.RemainingSeconds() != -1 {
		t.Fatalf("expected -1 for untimed quiz, got %d", s.RemainingSeconds())
	}
	s.Tick()
	if s.State() != StateInProgress {
		t.Fatalf("ticks on untimed sessions must do nothing")
	}
}

func TestSessionRunStopsOnSubmit(t *testing.T) {
	defer goleak.VerifyNone(t)

	quiz := sampleQuiz()
	limit := 30
	quiz.TimeLimitMinutes = &limit

	s := NewSession(quiz, 42)
	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	s.Submit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run must return the instant the session submits")
	}
}

func TestSessionRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	quiz := sampleQuiz()
	limit := 30
	quiz.TimeLimitMinutes = &limit

	ctx, cancel := context.WithCancel(context.Background())
	s := NewSession(quiz, 42)
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run must return when the context is cancelled")
	}
}
