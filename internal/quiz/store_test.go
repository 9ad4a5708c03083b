package quiz

import "testing"

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	quiz := sampleQuiz()

	created := store.GetOrCreate("quiz-1:42", func() *Session {
		return NewSession(quiz, 42)
	})
	if created == nil {
		t.Fatalf("expected session created")
	}

	again := store.GetOrCreate("quiz-1:42", func() *Session {
		t.Fatalf("factory must not run for an existing key")
		return nil
	})
	if again != created {
		t.Fatalf("expected the same session for the same key")
	}

	if _, ok := store.Get("quiz-1:42"); !ok {
		t.Fatalf("expected session present")
	}
	if _, ok := store.Get("quiz-1:7"); ok {
		t.Fatalf("sessions must not leak across members")
	}

	created.Answer(quiz.Questions[0].ID, OptionAnswer(0))
	store.Delete("quiz-1:42")
	if _, ok := store.Get("quiz-1:42"); ok {
		t.Fatalf("expected session removed")
	}
	// abandoning never produced a submission
	if _, ok := created.Submission(); ok {
		t.Fatalf("abandoned session must not hold a submission")
	}
}
