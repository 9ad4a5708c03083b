package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
)

// State is a taker session's lifecycle state. Sessions move from
// StateInProgress to the terminal StateSubmitted and never back.
type State string

const (
	StateInProgress State = "IN_PROGRESS"
	StateSubmitted  State = "SUBMITTED"
)

// AnswerValue is one captured answer: an option index for auto-graded
// questions or free text for open-ended ones.
type AnswerValue struct {
	SelectedIndex *int
	Text          string
}

// OptionAnswer builds an AnswerValue selecting the given option index.
func OptionAnswer(index int) AnswerValue {
	return AnswerValue{SelectedIndex: &index}
}

// TextAnswer builds an AnswerValue carrying free text.
func TextAnswer(text string) AnswerValue {
	return AnswerValue{Text: text}
}

// SubmitHandler receives the submission exactly once, whether the member
// submitted explicitly or the countdown expired.
type SubmitHandler func(model.Submission)

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the session clock for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithSubmitHandler registers the callback invoked with the built submission.
func WithSubmitHandler(h SubmitHandler) Option {
	return func(s *Session) { s.onSubmit = h }
}

// WithStartedAt resumes an attempt that began earlier: the countdown picks
// up from the original start instead of restarting at the full limit.
func WithStartedAt(t time.Time) Option {
	return func(s *Session) { s.startedAt = t }
}

// Session runs one member's attempt at a quiz. It owns its answer map and
// countdown; no other session ever shares them. The quiz itself is read-only
// here — a session never mutates its quiz.
type Session struct {
	mu         sync.Mutex
	quiz       model.Quiz
	memberID   int
	state      State
	current    int
	answers    map[uuid.UUID]AnswerValue
	startedAt  time.Time
	remaining  int // seconds; -1 when untimed
	now        func() time.Time
	submission *model.Submission
	onSubmit   SubmitHandler
	done       chan struct{}
}

// NewSession starts an attempt: startedAt = now, navigation at the first
// question, an empty answer map, and, when the quiz has a time limit, a full
// countdown.
func NewSession(quiz model.Quiz, memberID int, opts ...Option) *Session {
	s := &Session{
		quiz:      quiz,
		memberID:  memberID,
		state:     StateInProgress,
		answers:   make(map[uuid.UUID]AnswerValue),
		remaining: -1,
		now:       time.Now,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.startedAt.IsZero() {
		s.startedAt = s.now()
	}
	if quiz.TimeLimitMinutes != nil {
		elapsed := int(s.now().Sub(s.startedAt).Seconds())
		s.remaining = *quiz.TimeLimitMinutes*60 - elapsed
		if s.remaining < 0 {
			s.remaining = 0
		}
	}
	return s
}

// Quiz returns the quiz under attempt.
func (s *Session) Quiz() model.Quiz { return s.quiz }

// MemberID returns the attempting member.
func (s *Session) MemberID() int { return s.memberID }

// StartedAt returns when the attempt began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RemainingSeconds returns the countdown value, or -1 for untimed quizzes.
func (s *Session) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// CurrentIndex returns the navigation position.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Done is closed once the session reaches StateSubmitted.
func (s *Session) Done() <-chan struct{} { return s.done }

// Answer upserts the member's value for a question; last write wins. Calls
// after submission, or for question ids not in the quiz, are no-ops.
func (s *Session) Answer(questionID uuid.UUID, value AnswerValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return
	}
	if !s.hasQuestion(questionID) {
		return
	}
	s.answers[questionID] = value
}

// Answers returns a copy of the captured answers keyed by question id.
func (s *Session) Answers() map[uuid.UUID]AnswerValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]AnswerValue, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// GoTo jumps to a question index. Out-of-range targets are no-ops.
// Navigation never discards previously entered answers.
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return
	}
	if index < 0 || index >= len(s.quiz.Questions) {
		return
	}
	s.current = index
}

// Next advances one question; a no-op at the last index.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return
	}
	if s.current < len(s.quiz.Questions)-1 {
		s.current++
	}
}

// Previous steps back one question; a no-op at the first index.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return
	}
	if s.current > 0 {
		s.current--
	}
}

// Tick accounts one elapsed second of the countdown. Reaching zero forces a
// submit with whatever answers were captured so far. Ticks on untimed or
// already-submitted sessions do nothing.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.state != StateInProgress || s.remaining < 0 {
		s.mu.Unlock()
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}
	s.remaining = 0
	sub := s.submitLocked()
	s.mu.Unlock()
	s.fire(sub)
}

// Submit transitions the session to StateSubmitted and builds the
// submission. Idempotent: a second call returns the first submission
// unchanged, so a timer expiry racing a manual click cannot double-score.
func (s *Session) Submit() model.Submission {
	s.mu.Lock()
	if s.state == StateSubmitted {
		sub := *s.submission
		s.mu.Unlock()
		return sub
	}
	sub := s.submitLocked()
	s.mu.Unlock()
	s.fire(sub)
	return sub
}

// Submission returns the built submission once the session has submitted.
func (s *Session) Submission() (model.Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submission == nil {
		return model.Submission{}, false
	}
	return *s.submission, true
}

// Run drives the countdown against the wall clock, one tick per second,
// until the session submits or ctx is cancelled. Untimed sessions return
// immediately. The goroutine terminates the instant StateSubmitted is
// reached, so a stale timer can never fire against a discarded session.
func (s *Session) Run(ctx context.Context) {
	if s.RemainingSeconds() < 0 {
		return
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// submitLocked grades the attempt. Auto-graded questions are correct iff the
// selected index equals the stored correct index; unanswered ones score
// incorrect. Open-ended answers record the entered text (empty when
// unanswered), keep IsCorrect nil and contribute nothing to the score.
func (s *Session) submitLocked() model.Submission {
	submittedAt := s.now()

	answers := make([]model.Answer, len(s.quiz.Questions))
	score := 0
	for i, q := range s.quiz.Questions {
		value, answered := s.answers[q.ID]
		answer := model.Answer{QuestionID: q.ID}
		if q.Type.AutoGraded() {
			correct := false
			if answered && value.SelectedIndex != nil {
				answer.SelectedIndex = value.SelectedIndex
				correct = q.CorrectIndex != nil && *value.SelectedIndex == *q.CorrectIndex
			}
			answer.IsCorrect = &correct
			if correct {
				score += q.Points
			}
		} else {
			answer.Text = value.Text
		}
		answers[i] = answer
	}

	totalPoints := model.ComputeTotalPoints(s.quiz.Questions)
	percent := 0.0
	if totalPoints > 0 {
		percent = float64(score) / float64(totalPoints) * 100
	}

	sub := model.Submission{
		ID:               uuid.New(),
		QuizID:           s.quiz.ID,
		MemberID:         s.memberID,
		Answers:          answers,
		Score:            score,
		ScorePercent:     percent,
		Passed:           percent >= float64(s.quiz.PassingScorePercent),
		StartedAt:        s.startedAt,
		SubmittedAt:      submittedAt,
		TimeSpentSeconds: int(submittedAt.Sub(s.startedAt).Seconds()),
	}

	s.submission = &sub
	s.state = StateSubmitted
	close(s.done)
	return sub
}

// fire delivers the submission to the handler outside the session lock.
func (s *Session) fire(sub model.Submission) {
	if s.onSubmit != nil {
		s.onSubmit(sub)
	}
}

func (s *Session) hasQuestion(id uuid.UUID) bool {
	for i := range s.quiz.Questions {
		if s.quiz.Questions[i].ID == id {
			return true
		}
	}
	return false
}
