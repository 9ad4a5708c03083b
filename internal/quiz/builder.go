package quiz

import (
	"errors"
	"time"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
)

// Builder errors. These are authoring-time guidance; handlers map them to
// 4xx responses, they are never fatal.
var (
	ErrNotSavable   = errors.New("quiz needs a title and at least one question to be saved")
	ErrMinOptions   = errors.New("a multiple-choice question keeps at least 2 options")
	ErrFixedOptions = errors.New("options can only be edited on multiple-choice questions")
)

// MoveDirection is the direction of a single-step question reorder.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// Builder produces or edits a quiz. All operations are in-memory state
// transitions; persisting the quiz returned by Save is the caller's concern.
// Operations referencing a question id that no longer exists are no-ops.
// The builder never touches submissions.
type Builder struct {
	quiz     model.Quiz
	selected *uuid.UUID
	now      func() time.Time
}

// NewBuilder starts a quiz from an empty shell (create mode).
func NewBuilder(authorID int) *Builder {
	now := time.Now
	return &Builder{
		quiz: model.Quiz{
			ID:        uuid.New(),
			AuthorID:  authorID,
			Status:    model.QuizStatusDraft,
			CreatedAt: now(),
			UpdatedAt: now(),
		},
		now: now,
	}
}

// EditBuilder wraps an existing draft quiz for further editing (edit mode).
func EditBuilder(q model.Quiz) *Builder {
	return &Builder{quiz: q, now: time.Now}
}

// WithClock overrides the builder's clock. Test use.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Quiz returns a snapshot of the quiz under construction, with TotalPoints
// freshly derived.
func (b *Builder) Quiz() model.Quiz {
	q := b.quiz
	q.Questions = append([]model.Question(nil), b.quiz.Questions...)
	q.TotalPoints = model.ComputeTotalPoints(q.Questions)
	return q
}

// SetTitle updates the quiz title.
func (b *Builder) SetTitle(title string) { b.quiz.Title = title }

// SetDescription updates the quiz description.
func (b *Builder) SetDescription(desc string) { b.quiz.Description = desc }

// SetTimeLimit sets the time limit in minutes; nil means untimed.
func (b *Builder) SetTimeLimit(minutes *int) { b.quiz.TimeLimitMinutes = minutes }

// SetPassingScore sets the passing threshold percentage.
func (b *Builder) SetPassingScore(percent int) { b.quiz.PassingScorePercent = percent }

// Select marks a question as the focused one.
func (b *Builder) Select(id uuid.UUID) {
	if b.indexOf(id) >= 0 {
		selected := id
		b.selected = &selected
	}
}

// Selected returns the focused question id, if any.
func (b *Builder) Selected() (uuid.UUID, bool) {
	if b.selected == nil {
		return uuid.Nil, false
	}
	return *b.selected, true
}

// AddQuestion appends a new question of the given type with default content
// and returns it.
func (b *Builder) AddQuestion(t model.QuestionType) model.Question {
	q := model.NewQuestion(t)
	q.QuizID = b.quiz.ID
	q.OrderNum = len(b.quiz.Questions)
	b.quiz.Questions = append(b.quiz.Questions, q)
	b.recompute()
	return q
}

// UpdateQuestion merges the non-nil fields of req into the question with the
// given id. Unknown ids are a no-op and reported via the return value.
func (b *Builder) UpdateQuestion(id uuid.UUID, req model.UpdateQuestionRequest) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	q := &b.quiz.Questions[i]
	if req.Text != nil {
		q.Text = *req.Text
	}
	if req.Points != nil {
		q.Points = *req.Points
	}
	if req.CorrectIndex != nil && q.Type.AutoGraded() {
		idx := *req.CorrectIndex
		q.CorrectIndex = &idx
	}
	if req.Explanation != nil {
		q.Explanation = *req.Explanation
	}
	b.recompute()
	return true
}

// DeleteQuestion removes the question with the given id. If it was the
// focused question, the selection is cleared. Unknown ids are a no-op.
func (b *Builder) DeleteQuestion(id uuid.UUID) {
	i := b.indexOf(id)
	if i < 0 {
		return
	}
	b.quiz.Questions = append(b.quiz.Questions[:i], b.quiz.Questions[i+1:]...)
	if b.selected != nil && *b.selected == id {
		b.selected = nil
	}
	b.renumber()
	b.recompute()
}

// AddOption appends an empty option to a multiple-choice question.
func (b *Builder) AddOption(questionID uuid.UUID) error {
	i := b.indexOf(questionID)
	if i < 0 {
		return nil
	}
	q := &b.quiz.Questions[i]
	if q.Type != model.QuestionTypeMultipleChoice {
		return ErrFixedOptions
	}
	q.Options = append(q.Options, "")
	return nil
}

// UpdateOption sets the text of one option. Out-of-range indexes are a no-op.
func (b *Builder) UpdateOption(questionID uuid.UUID, index int, value string) error {
	i := b.indexOf(questionID)
	if i < 0 {
		return nil
	}
	q := &b.quiz.Questions[i]
	if q.Type != model.QuestionTypeMultipleChoice {
		return ErrFixedOptions
	}
	if index < 0 || index >= len(q.Options) {
		return nil
	}
	q.Options[index] = value
	return nil
}

// DeleteOption removes one option. The edit is refused when the resulting
// option count would fall below 2. A correct index pointing at or past the
// removed slot is adjusted or cleared.
func (b *Builder) DeleteOption(questionID uuid.UUID, index int) error {
	i := b.indexOf(questionID)
	if i < 0 {
		return nil
	}
	q := &b.quiz.Questions[i]
	if q.Type != model.QuestionTypeMultipleChoice {
		return ErrFixedOptions
	}
	if index < 0 || index >= len(q.Options) {
		return nil
	}
	if len(q.Options)-1 < 2 {
		return ErrMinOptions
	}
	q.Options = append(q.Options[:index], q.Options[index+1:]...)
	if q.CorrectIndex != nil {
		switch {
		case *q.CorrectIndex == index:
			q.CorrectIndex = nil
		case *q.CorrectIndex > index:
			adjusted := *q.CorrectIndex - 1
			q.CorrectIndex = &adjusted
		}
	}
	return nil
}

// MoveQuestion swaps the question with its adjacent sibling. Moving the
// first question up or the last question down is a no-op.
func (b *Builder) MoveQuestion(id uuid.UUID, dir MoveDirection) {
	i := b.indexOf(id)
	if i < 0 {
		return
	}
	j := i
	switch dir {
	case MoveUp:
		j = i - 1
	case MoveDown:
		j = i + 1
	}
	if j < 0 || j >= len(b.quiz.Questions) || j == i {
		return
	}
	b.quiz.Questions[i], b.quiz.Questions[j] = b.quiz.Questions[j], b.quiz.Questions[i]
	b.renumber()
}

// Savable reports whether Save would succeed.
func (b *Builder) Savable() bool {
	return model.IsQuizSavable(&b.quiz)
}

// Save recomputes TotalPoints, stamps UpdatedAt and returns the finalized
// quiz. Only callable when the savability rule holds.
func (b *Builder) Save() (model.Quiz, error) {
	if !b.Savable() {
		return model.Quiz{}, ErrNotSavable
	}
	b.quiz.UpdatedAt = b.now()
	return b.Quiz(), nil
}

// Validate runs per-question validation over the whole quiz and returns a
// map of question id → field problems. Nil means every question is valid.
func (b *Builder) Validate() map[uuid.UUID]map[string]string {
	var problems map[uuid.UUID]map[string]string
	for _, q := range b.quiz.Questions {
		if fields := model.ValidateQuestion(q); fields != nil {
			if problems == nil {
				problems = make(map[uuid.UUID]map[string]string)
			}
			problems[q.ID] = fields
		}
	}
	return problems
}

func (b *Builder) indexOf(id uuid.UUID) int {
	for i := range b.quiz.Questions {
		if b.quiz.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Builder) renumber() {
	for i := range b.quiz.Questions {
		b.quiz.Questions[i].OrderNum = i
	}
}

func (b *Builder) recompute() {
	b.quiz.TotalPoints = model.ComputeTotalPoints(b.quiz.Questions)
}
