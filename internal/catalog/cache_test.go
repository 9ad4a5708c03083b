package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
)

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID uuid.UUID) (model.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func TestQuizCacheReadThrough(t *testing.T) {
	quizID := uuid.New()
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[uuid.UUID]model.Quiz{
			quizID: {ID: quizID, Title: "Hydration Habits"},
		}),
	}
	cache := NewQuizCache(loader, time.Minute)

	quiz, err := cache.Get(context.Background(), quizID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Title != "Hydration Habits" {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.Get(context.Background(), quizID); err != nil {
		t.Fatalf("get quiz again: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizCacheMiss(t *testing.T) {
	cache := NewQuizCache(NewStaticQuizLoader(nil), time.Minute)
	if _, err := cache.Get(context.Background(), uuid.New()); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestQuizCacheInvalidate(t *testing.T) {
	quizID := uuid.New()
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[uuid.UUID]model.Quiz{
			quizID: {ID: quizID, Title: "Rest and Recovery"},
		}),
	}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.Get(context.Background(), quizID); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	cache.Invalidate(quizID)
	if _, err := cache.Get(context.Background(), quizID); err != nil {
		t.Fatalf("get quiz after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuizCacheExpiry(t *testing.T) {
	quizID := uuid.New()
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[uuid.UUID]model.Quiz{
			quizID: {ID: quizID},
		}),
	}
	cache := NewQuizCache(loader, time.Minute)

	current := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return current }

	if _, err := cache.Get(context.Background(), quizID); err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	// jitter stretches the TTL by at most 10%, so two minutes is past expiry
	current = current.Add(2 * time.Minute)
	if _, err := cache.Get(context.Background(), quizID); err != nil {
		t.Fatalf("get quiz after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}
