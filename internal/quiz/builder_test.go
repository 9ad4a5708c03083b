package quiz

import (
	"errors"
	"testing"
	"time"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
)

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestBuilderStartsEmptyDraft(t *testing.T) {
	b := NewBuilder(7)
	q := b.Quiz()
	if q.Status != model.QuizStatusDraft {
		t.Fatalf("expected draft status, got %s", q.Status)
	}
	if q.AuthorID != 7 {
		t.Fatalf("expected author 7, got %d", q.AuthorID)
	}
	if len(q.Questions) != 0 || q.TotalPoints != 0 {
		t.Fatalf("expected empty shell, got %+v", q)
	}
	if b.Savable() {
		t.Fatalf("empty shell must not be savable")
	}
}

func TestBuilderTotalPointsTracksEveryEdit(t *testing.T) {
	b := NewBuilder(1)
	q1 := b.AddQuestion(model.QuestionTypeMultipleChoice)
	q2 := b.AddQuestion(model.QuestionTypeTrueFalse)
	if got := b.Quiz().TotalPoints; got != 2 {
		t.Fatalf("expected 2 after two default questions, got %d", got)
	}

	b.UpdateQuestion(q1.ID, model.UpdateQuestionRequest{Points: intPtr(5)})
	if got := b.Quiz().TotalPoints; got != 6 {
		t.Fatalf("expected 6 after points update, got %d", got)
	}

	b.DeleteQuestion(q2.ID)
	if got := b.Quiz().TotalPoints; got != 5 {
		t.Fatalf("expected 5 after delete, got %d", got)
	}
}

func TestBuilderUpdateQuestionUnknownID(t *testing.T) {
	b := NewBuilder(1)
	b.AddQuestion(model.QuestionTypeMultipleChoice)
	before := b.Quiz()

	if b.UpdateQuestion(uuid.New(), model.UpdateQuestionRequest{Text: strPtr("ghost")}) {
		t.Fatalf("expected unknown id to report false")
	}
	after := b.Quiz()
	if after.Questions[0].Text != before.Questions[0].Text {
		t.Fatalf("unknown id edit must not touch existing questions")
	}
}

func TestBuilderCorrectIndexIgnoredOnOpenEnded(t *testing.T) {
	b := NewBuilder(1)
	q := b.AddQuestion(model.QuestionTypeOpenEnded)
	b.UpdateQuestion(q.ID, model.UpdateQuestionRequest{CorrectIndex: intPtr(0)})
	if got := b.Quiz().Questions[0].CorrectIndex; got != nil {
		t.Fatalf("open-ended question must never carry a correct index, got %v", *got)
	}
}

func TestBuilderDeleteQuestionClearsSelection(t *testing.T) {
	b := NewBuilder(1)
	q1 := b.AddQuestion(model.QuestionTypeMultipleChoice)
	q2 := b.AddQuestion(model.QuestionTypeTrueFalse)

	b.Select(q2.ID)
	b.DeleteQuestion(q2.ID)
	if _, ok := b.Selected(); ok {
		t.Fatalf("deleting the focused question must clear the selection")
	}

	// remaining question is renumbered from zero
	if got := b.Quiz().Questions[0].OrderNum; got != 0 {
		t.Fatalf("expected order 0 after renumber, got %d", got)
	}
	if b.Quiz().Questions[0].ID != q1.ID {
		t.Fatalf("wrong question survived the delete")
	}
}

func TestBuilderOptionEdits(t *testing.T) {
	b := NewBuilder(1)
	mc := b.AddQuestion(model.QuestionTypeMultipleChoice)

	if err := b.AddOption(mc.ID); err != nil {
		t.Fatalf("add option: %v", err)
	}
	if err := b.UpdateOption(mc.ID, 2, "Deadlift"); err != nil {
		t.Fatalf("update option: %v", err)
	}
	if got := b.Quiz().Questions[0].Options[2]; got != "Deadlift" {
		t.Fatalf("expected option text set, got %q", got)
	}

	// out-of-range index is a no-op, not an error
	if err := b.UpdateOption(mc.ID, 9, "ghost"); err != nil {
		t.Fatalf("out-of-range update: %v", err)
	}

	if err := b.DeleteOption(mc.ID, 2); err != nil {
		t.Fatalf("delete option: %v", err)
	}
	if err := b.DeleteOption(mc.ID, 0); !errors.Is(err, ErrMinOptions) {
		t.Fatalf("expected ErrMinOptions below 2 options, got %v", err)
	}
	if got := len(b.Quiz().Questions[0].Options); got != 2 {
		t.Fatalf("refused delete must leave options intact, got %d", got)
	}
}

func TestBuilderOptionEditsRefusedOnFixedTypes(t *testing.T) {
	b := NewBuilder(1)
	tf := b.AddQuestion(model.QuestionTypeTrueFalse)

	if err := b.AddOption(tf.ID); !errors.Is(err, ErrFixedOptions) {
		t.Fatalf("expected ErrFixedOptions on true/false, got %v", err)
	}
	if err := b.UpdateOption(tf.ID, 0, "Maybe"); !errors.Is(err, ErrFixedOptions) {
		t.Fatalf("expected ErrFixedOptions on true/false, got %v", err)
	}
	if err := b.DeleteOption(tf.ID, 0); !errors.Is(err, ErrFixedOptions) {
		t.Fatalf("expected ErrFixedOptions on true/false, got %v", err)
	}
}

func TestBuilderDeleteOptionAdjustsCorrectIndex(t *testing.T) {
	b := NewBuilder(1)
	mc := b.AddQuestion(model.QuestionTypeMultipleChoice)
	if err := b.AddOption(mc.ID); err != nil {
		t.Fatalf("add option: %v", err)
	}

	// correct answer at slot 2, delete slot 0 → correct index shifts to 1
	b.UpdateQuestion(mc.ID, model.UpdateQuestionRequest{CorrectIndex: intPtr(2)})
	if err := b.DeleteOption(mc.ID, 0); err != nil {
		t.Fatalf("delete option: %v", err)
	}
	if got := b.Quiz().Questions[0].CorrectIndex; got == nil || *got != 1 {
		t.Fatalf("expected correct index shifted to 1, got %v", got)
	}

	// deleting the correct slot itself clears the index
	b.AddOption(mc.ID)
	if err := b.DeleteOption(mc.ID, 1); err != nil {
		t.Fatalf("delete option: %v", err)
	}
	if got := b.Quiz().Questions[0].CorrectIndex; got != nil {
		t.Fatalf("expected correct index cleared, got %v", *got)
	}
}

func TestBuilderMoveQuestionBoundaries(t *testing.T) {
	b := NewBuilder(1)
	q1 := b.AddQuestion(model.QuestionTypeMultipleChoice)
	q2 := b.AddQuestion(model.QuestionTypeTrueFalse)
	q3 := b.AddQuestion(model.QuestionTypeOpenEnded)

	// first up and last down are no-ops
	b.MoveQuestion(q1.ID, MoveUp)
	b.MoveQuestion(q3.ID, MoveDown)
	ids := quizIDs(b.Quiz())
	if ids[0] != q1.ID || ids[2] != q3.ID {
		t.Fatalf("boundary moves must not reorder: %v", ids)
	}

	b.MoveQuestion(q3.ID, MoveUp)
	ids = quizIDs(b.Quiz())
	if ids[1] != q3.ID || ids[2] != q2.ID {
		t.Fatalf("expected q3 swapped with q2, got %v", ids)
	}
	for i, q := range b.Quiz().Questions {
		if q.OrderNum != i {
			t.Fatalf("expected contiguous order numbers after move, got %d at %d", q.OrderNum, i)
		}
	}
}

func TestBuilderSave(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	b := NewBuilder(1).WithClock(func() time.Time { return fixed })

	if _, err := b.Save(); !errors.Is(err, ErrNotSavable) {
		t.Fatalf("expected ErrNotSavable on empty shell, got %v", err)
	}

	b.SetTitle("Mobility Check")
	if _, err := b.Save(); !errors.Is(err, ErrNotSavable) {
		t.Fatalf("title alone must not be savable, got %v", err)
	}

	b.AddQuestion(model.QuestionTypeTrueFalse)
	saved, err := b.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !saved.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected UpdatedAt stamped with clock, got %v", saved.UpdatedAt)
	}
	if saved.TotalPoints != 1 {
		t.Fatalf("expected total points recomputed on save, got %d", saved.TotalPoints)
	}
}

func TestBuilderValidateCollectsProblems(t *testing.T) {
	b := NewBuilder(1)
	bad := b.AddQuestion(model.QuestionTypeMultipleChoice) // empty text, no correct index
	good := b.AddQuestion(model.QuestionTypeTrueFalse)
	b.UpdateQuestion(good.ID, model.UpdateQuestionRequest{
		Text:         strPtr("Rest days matter."),
		CorrectIndex: intPtr(0),
	})

	problems := b.Validate()
	if problems == nil {
		t.Fatalf("expected problems for the default multiple-choice question")
	}
	if _, ok := problems[bad.ID]; !ok {
		t.Fatalf("expected problems keyed by the invalid question id, got %v", problems)
	}
	if _, ok := problems[good.ID]; ok {
		t.Fatalf("valid question must not be reported: %v", problems[good.ID])
	}
}

func quizIDs(q model.Quiz) []uuid.UUID {
	ids := make([]uuid.UUID, len(q.Questions))
	for i, question := range q.Questions {
		ids[i] = question.ID
	}
	return ids
}
